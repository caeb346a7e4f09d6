// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package emulator_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/emulator"
	test_ledger "github.com/blinklabs-io/utxoledger/internal/test/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/provider"
	"github.com/blinklabs-io/utxoledger/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testNetworkId = common.AddressNetworkTestnet

var (
	alice = test_ledger.NewKey(1)
	bob   = test_ledger.NewKey(2)

	aliceAddr = alice.Address(testNetworkId)
	bobAddr   = bob.Address(testNetworkId)
)

func lovelace(amount common.Coin) common.Value {
	return common.NewValue(amount, common.MultiAsset{})
}

// newTestEmulator funds alice with 100 ADA at genesis
func newTestEmulator(t *testing.T, opts ...emulator.EmulatorOption) *emulator.Emulator {
	genesis := &emulator.Genesis{
		NetworkId: testNetworkId,
		InitialFunds: map[string]uint64{
			aliceAddr.String(): 100_000_000,
		},
	}
	e, err := emulator.New(append([]emulator.EmulatorOption{emulator.WithGenesis(genesis)}, opts...)...)
	require.NoError(t, err)
	return e
}

// payBob sends 25 ADA from alice's genesis UTXO to bob with the change returned to alice
func payBob(t *testing.T, e *emulator.Emulator) *common.Transaction {
	tx := &common.Transaction{
		Body: common.TransactionBody{
			Inputs: []common.TransactionInput{emulator.GenesisUtxoId(aliceAddr)},
			Outputs: []common.TransactionOutput{
				{Address: bobAddr, Amount: lovelace(25_000_000)},
				{Address: aliceAddr, Amount: lovelace(75_000_000)},
			},
		},
		Valid: true,
	}
	require.NoError(t, test_ledger.Balance(tx, e.ProtocolParameters(), 1, alice))
	return tx
}

func sumCoin(utxos []common.Utxo) common.Coin {
	var ret common.Coin
	for _, utxo := range utxos {
		ret += utxo.Output.Amount.Coin
	}
	return ret
}

func TestAliceBobPayment(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	txId, err := e.Submit(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), txId)

	bobUtxos := e.FindUtxos(bobAddr)
	require.Len(t, bobUtxos, 1)
	assert.Equal(t, common.Coin(25_000_000), bobUtxos[0].Output.Amount.Coin)
	assert.Equal(t, common.NewTransactionInput(txId, 0), bobUtxos[0].Id)
	assert.Equal(
		t,
		common.Coin(100_000_000-25_000_000)-tx.Body.Fee,
		sumCoin(e.FindUtxos(aliceAddr)),
	)
	// Conservation: the inputs equal the outputs plus the fee
	assert.Equal(t, common.Coin(100_000_000), sumCoin(e.Utxos())+tx.Body.Fee)
	// At-most-once consumption
	_, err = e.Utxo(emulator.GenesisUtxoId(aliceAddr))
	assert.ErrorIs(t, err, common.ErrUtxoNotFound)
	for idx, output := range tx.Body.Outputs {
		utxo, err := e.Utxo(common.NewTransactionInput(txId, uint32(idx)))
		require.NoError(t, err)
		assert.Equal(t, output.Amount.Coin, utxo.Output.Amount.Coin)
	}

	receipt, ok := e.Receipt(txId)
	require.True(t, ok)
	assert.Equal(t, tx.Body.Fee, receipt.Fee)
	assert.Equal(t, []common.TransactionInput{emulator.GenesisUtxoId(aliceAddr)}, receipt.Consumed)
	assert.Len(t, receipt.Produced, 2)
}

func TestResubmitIsUtxoNotAvailable(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	_, err := e.Submit(context.Background(), tx)
	require.NoError(t, err)
	before := e.Utxos()

	_, err = e.Submit(context.Background(), tx)
	var submitErr *provider.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, provider.ErrorKindUtxoNotAvailable, submitErr.Kind)
	assert.Equal(t, []common.TransactionInput{emulator.GenesisUtxoId(aliceAddr)}, submitErr.Inputs)
	// Rejection leaves the state unchanged
	assert.Equal(t, before, e.Utxos())

	metrics := e.Metrics()
	assert.Equal(t, uint64(2), metrics.TxSubmitted)
	assert.Equal(t, uint64(1), metrics.TxAccepted)
	assert.Equal(t, uint64(1), metrics.TxRejected)
	assert.Equal(t, 2, metrics.UtxoCount)
}

func TestConcurrentSubmitAcceptsOnce(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	const submitters = 16
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		errs     = make(chan error, submitters)
	)
	for range submitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Submit(context.Background(), tx); err != nil {
				errs <- err
				return
			}
			accepted.Add(1)
		}()
	}
	wg.Wait()
	close(errs)
	assert.Equal(t, int32(1), accepted.Load())
	for err := range errs {
		assert.ErrorIs(t, err, provider.ErrUtxoNotAvailable)
	}
	assert.Len(t, e.FindUtxos(bobAddr), 1)
	metrics := e.Metrics()
	assert.Equal(t, uint64(submitters), metrics.TxSubmitted)
	assert.Equal(t, uint64(1), metrics.TxAccepted)
	assert.Equal(t, uint64(submitters-1), metrics.TxRejected)
}

func TestExpiredTransaction(t *testing.T) {
	e := newTestEmulator(t)
	tx := &common.Transaction{
		Body: common.TransactionBody{
			Inputs: []common.TransactionInput{emulator.GenesisUtxoId(aliceAddr)},
			Outputs: []common.TransactionOutput{
				{Address: bobAddr, Amount: lovelace(100_000_000)},
			},
		},
		Valid: true,
	}
	start := uint64(100)
	ttl := uint64(200)
	tx.Body.ValidityIntervalStart = &start
	tx.Body.Ttl = &ttl
	require.NoError(t, test_ledger.Balance(tx, e.ProtocolParameters(), 0, alice))

	e.SetSlot(500)
	assert.Equal(t, uint64(500), e.CurrentSlot())
	_, err := e.Submit(context.Background(), tx)
	assert.ErrorIs(t, err, provider.ErrTransactionExpired)
	assert.Len(t, e.FindUtxos(aliceAddr), 1)
}

func TestValidityIntervalSlots(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	start := uint64(100)
	tx.Body.ValidityIntervalStart = &start
	require.NoError(t, test_ledger.Balance(tx, e.ProtocolParameters(), 1, alice))
	// Not valid yet
	_, err := e.Submit(context.Background(), tx)
	assert.ErrorIs(t, err, provider.ErrTransactionExpired)
	assert.Equal(t, uint64(100), e.AdvanceSlots(100))
	_, err = e.Submit(context.Background(), tx)
	require.NoError(t, err)
}

func TestValueNotConserved(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	tx.Body.Outputs[1].Amount.Coin += 1
	test_ledger.Sign(tx, alice)
	_, err := e.Submit(context.Background(), tx)
	assert.ErrorIs(t, err, provider.ErrValueNotConserved)
}

func TestSubmitCbor(t *testing.T) {
	e := newTestEmulator(t)
	tx := payBob(t, e)
	txCbor, err := cbor.Encode(tx)
	require.NoError(t, err)
	txId, err := e.SubmitCbor(context.Background(), txCbor)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), txId)

	_, err = e.SubmitCbor(context.Background(), []byte{0x84, 0x01})
	assert.ErrorIs(t, err, provider.ErrValidation)
}

func TestSubmitCanceled(t *testing.T) {
	e := newTestEmulator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Submit(ctx, payBob(t, e))
	assert.ErrorIs(t, err, provider.ErrInternal)
	assert.Len(t, e.FindUtxos(aliceAddr), 1)
}

func TestMinimalValidation(t *testing.T) {
	e := newTestEmulator(t, emulator.WithMinimalValidation())
	tx := payBob(t, e)
	// Neither signatures nor fees are checked
	tx.WitnessSet.VkeyWitnesses = nil
	_, err := e.Submit(context.Background(), tx)
	require.NoError(t, err)
}

func TestQueryUtxos(t *testing.T) {
	e := newTestEmulator(
		t,
		emulator.WithUtxos(
			test_ledger.NewUtxo(0x01, 0, bobAddr, 2_000_000),
			test_ledger.NewUtxo(0x02, 0, bobAddr, 3_000_000),
			test_ledger.NewUtxo(0x03, 0, bobAddr, 4_000_000),
		),
	)
	q := e.QueryUtxos(query.ByAddress(bobAddr)).MinTotal(lovelace(4_000_000))
	ret := q.Execute()
	assert.GreaterOrEqual(t, sumCoin(ret), common.Coin(4_000_000))
	assert.Less(t, len(ret), 3)
	assert.Len(t, e.QueryUtxos(query.ByAddress(bobAddr)).Limit(1).Execute(), 1)
	assert.Len(t, e.QueryUtxos(query.All()).Execute(), 4)

	// The query is evaluated against the state at the time of execution
	_, err := e.Submit(context.Background(), payBob(t, e))
	require.NoError(t, err)
	assert.Len(t, e.QueryUtxos(query.ByAddress(bobAddr)).Execute(), 4)
}

func TestUtxorpcUtxos(t *testing.T) {
	e := newTestEmulator(t)
	txId, err := e.Submit(context.Background(), payBob(t, e))
	require.NoError(t, err)
	utxos, err := e.UtxorpcUtxos(bobAddr)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, txId.Bytes(), utxos[0].GetTxHash())
	assert.Equal(t, uint32(0), utxos[0].GetOutputIndex())
	assert.Equal(t, bobAddr.Bytes(), utxos[0].GetAsOutput().GetAddress())
	assert.Equal(t, uint64(25_000_000), utxos[0].GetAsOutput().GetCoin())
	assert.Empty(t, utxos[0].GetAsOutput().GetAssets())
	none, err := e.UtxorpcUtxos(test_ledger.NewKey(3).Address(testNetworkId))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGenesisFromReader(t *testing.T) {
	genesisJson := fmt.Sprintf(
		`{"networkId": 0, "startSlot": 42, "protocolParams": {"minFeeA": 1}, "initialFunds": {%q: 5000000}}`,
		bobAddr.String(),
	)
	genesis, err := emulator.NewGenesisFromReader(strings.NewReader(genesisJson))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), uint64(genesis.ProtocolParams.MinFeeA))
	assert.Equal(
		t,
		common.DefaultProtocolParameters().KeyDeposit,
		genesis.ProtocolParams.KeyDeposit,
	)
	e, err := emulator.New(emulator.WithGenesis(genesis))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), e.CurrentSlot())
	utxos := e.Utxos()
	require.Len(t, utxos, 1)
	assert.Equal(t, emulator.GenesisUtxoId(bobAddr), utxos[0].Id)
	assert.Equal(t, common.Coin(5_000_000), utxos[0].Output.Amount.Coin)
}

func TestGenesisWrongNetwork(t *testing.T) {
	genesis := &emulator.Genesis{
		NetworkId: common.AddressNetworkMainnet,
		InitialFunds: map[string]uint64{
			aliceAddr.String(): 1_000_000,
		},
	}
	_, err := emulator.New(emulator.WithGenesis(genesis))
	require.Error(t, err)
}

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	e := newTestEmulator(t, emulator.WithPrometheusRegisterer(registry))
	_, err := e.Submit(context.Background(), payBob(t, e))
	require.NoError(t, err)
	_, err = e.SubmitCbor(context.Background(), []byte{0xa0})
	require.Error(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[family.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), values["utxoledger_tx_submitted_total"])
	assert.Equal(t, float64(1), values["utxoledger_tx_accepted_total"])
	assert.Equal(t, float64(1), values["utxoledger_tx_rejected_total"])
	assert.Equal(t, float64(2), values["utxoledger_utxo_count"])

	// Registering twice fails
	_, err = emulator.New(emulator.WithPrometheusRegisterer(registry))
	require.Error(t, err)
}
