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

// Package emulator provides an in-memory ledger node. Submissions are serialized and only an
// accepted transaction replaces the current state
package emulator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/utxoledger/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/state"
	"github.com/blinklabs-io/utxoledger/ledger/sts"
	"github.com/blinklabs-io/utxoledger/provider"
	"github.com/blinklabs-io/utxoledger/query"
	lru "github.com/hashicorp/golang-lru"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Receipt records an accepted transaction
type Receipt struct {
	TxId     common.TransactionId
	Slot     uint64
	Fee      common.Coin
	Valid    bool
	Consumed []common.TransactionInput
	Produced []common.TransactionInput
}

type Emulator struct {
	mu       sync.RWMutex
	config   EmulatorConfig
	pipeline *sts.Pipeline
	state    *state.State
	slot     uint64
	pparams  *common.ProtocolParameters
	receipts *lru.Cache
	metrics  *emulatorMetrics
}

var _ provider.Provider = (*Emulator)(nil)

func New(opts ...EmulatorOption) (*Emulator, error) {
	config := DefaultEmulatorConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		return nil, errors.New("no logger configured")
	}
	if config.Genesis == nil && config.GenesisFile != "" {
		genesis, err := NewGenesisFromFile(config.GenesisFile)
		if err != nil {
			return nil, fmt.Errorf("load genesis: %w", err)
		}
		config.Genesis = genesis
	}
	utxos := config.Utxos
	if config.Genesis != nil {
		genesisUtxos, err := config.Genesis.GenesisUtxos()
		if err != nil {
			return nil, err
		}
		utxos = append(genesisUtxos, utxos...)
		config.NetworkId = config.Genesis.NetworkId
		config.Slot = config.Genesis.StartSlot
		if config.Genesis.ProtocolParams != nil {
			config.ProtocolParams = config.Genesis.ProtocolParams
		}
	}
	if config.ProtocolParams == nil {
		config.ProtocolParams = common.DefaultProtocolParameters()
	}
	st, err := state.NewFromUtxos(utxos)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	receipts, err := lru.New(config.ReceiptCacheSize)
	if err != nil {
		return nil, err
	}
	metrics, err := newEmulatorMetrics(config.PromRegistry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	e := &Emulator{
		config: config,
		pipeline: sts.New(
			config.Validators,
			config.Mutators,
			sts.WithLogger(config.Logger),
		),
		state:    st,
		slot:     config.Slot,
		pparams:  config.ProtocolParams.Clone(),
		receipts: receipts,
		metrics:  metrics,
	}
	metrics.setUtxoCount(st.UtxoCount())
	metrics.setSlot(e.slot)
	config.Logger.Debug(
		"emulator started",
		"slot", e.slot,
		"network_id", config.NetworkId,
		"utxo_count", st.UtxoCount(),
	)
	return e, nil
}

// Submit validates the transaction against the current state and slot and applies it.
// Rejected transactions leave the state unchanged
func (e *Emulator) Submit(
	ctx context.Context,
	tx *common.Transaction,
) (common.TransactionId, error) {
	e.metrics.recordSubmit()
	if err := ctx.Err(); err != nil {
		return e.reject(tx, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ledgerCtx := common.NewContext(e.slot, e.pparams, e.config.NetworkId, e.config.Evaluator)
	next, err := e.pipeline.Apply(ledgerCtx, e.state, tx)
	if err != nil {
		return e.reject(tx, err)
	}
	txId, err := tx.Id()
	if err != nil {
		return e.reject(tx, err)
	}
	produced, err := tx.Produced()
	if err != nil {
		return e.reject(tx, err)
	}
	e.state = next
	receipt := Receipt{
		TxId:     txId,
		Slot:     e.slot,
		Fee:      tx.Body.Fee,
		Valid:    tx.Valid,
		Consumed: tx.Consumed(),
	}
	for _, utxo := range produced {
		receipt.Produced = append(receipt.Produced, utxo.Id)
	}
	e.receipts.Add(txId, receipt)
	e.metrics.recordAccept(next.UtxoCount())
	e.config.Logger.Debug(
		"accepted transaction",
		"tx_hash", txId.String(),
		"slot", e.slot,
		"valid", tx.Valid,
	)
	return txId, nil
}

func (e *Emulator) reject(tx *common.Transaction, err error) (common.TransactionId, error) {
	submitErr := provider.Classify(err)
	e.metrics.recordReject(submitErr.Kind.String())
	attrs := []any{"kind", submitErr.Kind.String(), "error", err}
	if tx != nil {
		attrs = append(attrs, "tx_hash", tx.Hash().String())
	}
	e.config.Logger.Debug("rejected transaction", attrs...)
	return common.TransactionId{}, submitErr
}

// SubmitCbor decodes and submits a transaction. Decode failures are validation errors
func (e *Emulator) SubmitCbor(
	ctx context.Context,
	txCbor []byte,
) (common.TransactionId, error) {
	tx, err := ledger.NewTransactionFromCbor(txCbor)
	if err != nil {
		e.metrics.recordSubmit()
		return e.reject(nil, err)
	}
	return e.Submit(ctx, tx)
}

// State returns the current state. It must not be modified
func (e *Emulator) State() *state.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Utxos returns every UTXO in input order
func (e *Emulator) Utxos() []common.Utxo {
	return e.State().Utxos()
}

func (e *Emulator) FindUtxos(addr common.Address) []common.Utxo {
	return e.State().UtxosByAddress(addr)
}

// UtxorpcUtxos returns the UTXOs at the address in utxorpc form, each input carrying its
// resolved output
func (e *Emulator) UtxorpcUtxos(addr common.Address) ([]*utxorpc.TxInput, error) {
	utxos := e.FindUtxos(addr)
	ret := make([]*utxorpc.TxInput, 0, len(utxos))
	for _, utxo := range utxos {
		tmp, err := utxo.Utxorpc()
		if err != nil {
			return nil, fmt.Errorf("utxo %s: %w", utxo.Id.String(), err)
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}

// Utxo returns a single UTXO by its input
func (e *Emulator) Utxo(id common.TransactionInput) (common.Utxo, error) {
	return e.State().UtxoById(id)
}

type currentState struct {
	e *Emulator
}

func (c currentState) Ascend(fn func(common.Utxo) bool) {
	c.e.State().Ascend(fn)
}

// QueryUtxos returns a query over the UTXO set. The query is evaluated against the state
// current at the time of Execute
func (e *Emulator) QueryUtxos(pred query.Predicate) *query.Query {
	return query.New(currentState{e: e}, pred)
}

func (e *Emulator) CurrentSlot() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slot
}

// SetSlot sets the current slot. The slot may also move backwards
func (e *Emulator) SetSlot(slot uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slot = slot
	e.metrics.setSlot(slot)
}

// AdvanceSlots moves the current slot forward and returns the new slot
func (e *Emulator) AdvanceSlots(count uint64) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slot += count
	e.metrics.setSlot(e.slot)
	return e.slot
}

// ProtocolParameters returns a copy of the current protocol parameters
func (e *Emulator) ProtocolParameters() *common.ProtocolParameters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pparams.Clone()
}

// SetProtocolParameters applies to transactions submitted afterwards
func (e *Emulator) SetProtocolParameters(pparams *common.ProtocolParameters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pparams = pparams.Clone()
}

// Receipt returns the receipt of a recently accepted transaction
func (e *Emulator) Receipt(txId common.TransactionId) (Receipt, bool) {
	tmp, ok := e.receipts.Get(txId)
	if !ok {
		return Receipt{}, false
	}
	receipt, ok := tmp.(Receipt)
	return receipt, ok
}

func (e *Emulator) Metrics() Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Metrics{
		TxSubmitted: e.metrics.txSubmitted.Load(),
		TxAccepted:  e.metrics.txAccepted.Load(),
		TxRejected:  e.metrics.txRejected.Load(),
		UtxoCount:   e.state.UtxoCount(),
		Slot:        e.slot,
	}
}
