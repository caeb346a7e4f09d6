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

package script_test

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/common/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScriptTx(datum *common.Datum) (*common.Transaction, script.ResolverFunc, common.PlutusV2Script) {
	validator := common.PlutusV2Script([]byte{0x01, 0x02, 0x03})
	scriptAddr := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewScriptCredential(validator.Hash()),
	)
	keyAddr := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(common.Blake2b224Hash([]byte("key"))),
	)
	// The key-locked input sorts before the script-locked one
	keyInput := common.NewTransactionInput(common.Blake2b256{0x01}, 0)
	scriptInput := common.NewTransactionInput(common.Blake2b256{0x02}, 0)
	utxos := map[common.TransactionInput]common.Utxo{
		keyInput: {
			Id: keyInput,
			Output: common.TransactionOutput{
				Address: keyAddr,
				Amount:  common.NewValue(5_000_000, common.MultiAsset{}),
			},
		},
		scriptInput: {
			Id: scriptInput,
			Output: common.TransactionOutput{
				Address: scriptAddr,
				Amount:  common.NewValue(5_000_000, common.MultiAsset{}),
				Datum:   datum,
			},
		},
	}
	resolve := func(input common.TransactionInput) (common.Utxo, bool) {
		utxo, ok := utxos[input]
		return utxo, ok
	}
	ttl := uint64(500)
	tx := &common.Transaction{
		Body: common.TransactionBody{
			Inputs:  []common.TransactionInput{scriptInput, keyInput},
			Outputs: []common.TransactionOutput{utxos[keyInput].Output},
			Fee:     200_000,
			Ttl:     &ttl,
			Mint: common.NewAssetMap(
				common.AssetEntry[common.Unbounded]{
					Policy: validator.Hash(),
					Name:   "token",
					Amount: common.NewUnbounded(1),
				},
			),
		},
		WitnessSet: common.WitnessSet{
			PlutusV2Scripts: []common.PlutusV2Script{validator},
		},
		Valid: true,
	}
	return tx, resolve, validator
}

func TestScriptPurposes(t *testing.T) {
	datum := common.NewDatum(data.NewInteger(big.NewInt(1)))
	tx, resolve, validator := testScriptTx(&datum)
	purposes := script.ScriptPurposes(tx, resolve)
	require.Len(t, purposes, 2)
	assert.Equal(t, common.RedeemerTagSpend, purposes[0].Tag)
	// Redeemer indexes follow the sorted input order
	assert.Equal(t, uint32(1), purposes[0].Index)
	assert.Equal(t, validator.Hash(), purposes[0].Info.ScriptHash())
	assert.Equal(t, common.RedeemerTagMint, purposes[1].Tag)
	assert.Equal(t, uint32(0), purposes[1].Index)
}

func TestArgumentsV1V2(t *testing.T) {
	datum := common.NewDatum(data.NewInteger(big.NewInt(1)))
	tx, resolve, _ := testScriptTx(&datum)
	txInfo := script.NewTxInfo(tx, resolve)
	require.Len(t, txInfo.Inputs, 2)
	redeemer := common.Redeemer{
		Tag:  common.RedeemerTagSpend,
		Data: common.NewDatum(data.NewInteger(big.NewInt(2))),
	}
	args, err := txInfo.Arguments(common.ScriptRefTypePlutusV2, txInfo.Purposes[0], redeemer)
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Equal(t, datum.Data, args[0])
	assert.Equal(t, redeemer.Data.Data, args[1])
	// Minting scripts receive no datum
	args, err = txInfo.Arguments(common.ScriptRefTypePlutusV2, txInfo.Purposes[1], redeemer)
	require.NoError(t, err)
	assert.Len(t, args, 2)
}

func TestArgumentsMissingDatum(t *testing.T) {
	tx, resolve, _ := testScriptTx(nil)
	txInfo := script.NewTxInfo(tx, resolve)
	redeemer := common.Redeemer{Data: common.NewDatum(data.NewInteger(big.NewInt(2)))}
	_, err := txInfo.Arguments(common.ScriptRefTypePlutusV2, txInfo.Purposes[0], redeemer)
	assert.ErrorIs(t, err, script.ErrMissingDatum)
	// Plutus V3 makes the datum optional
	args, err := txInfo.Arguments(common.ScriptRefTypePlutusV3, txInfo.Purposes[0], redeemer)
	require.NoError(t, err)
	assert.Len(t, args, 1)
}

func TestTimeRangeBounds(t *testing.T) {
	lower := uint64(100)
	upper := uint64(200)
	tr := script.TimeRange{LowerBound: &lower, UpperBound: &upper}
	expected := data.NewConstr(
		0,
		data.NewConstr(0, data.NewConstr(1, data.NewInteger(big.NewInt(100))), data.NewConstr(1)),
		data.NewConstr(0, data.NewConstr(1, data.NewInteger(big.NewInt(200))), data.NewConstr(0)),
	)
	assert.Equal(t, expected, tr.ToPlutusData())
	unbounded := script.TimeRange{}
	assert.Equal(
		t,
		data.NewConstr(
			0,
			data.NewConstr(0, data.NewConstr(0), data.NewConstr(1)),
			data.NewConstr(0, data.NewConstr(2), data.NewConstr(1)),
		),
		unbounded.ToPlutusData(),
	)
}
