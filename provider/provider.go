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

// Package provider defines the ledger provider interface shared by the in-memory emulator and
// networked submitters, along with the classification of submission failures
package provider

import (
	"context"

	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/query"
)

// Submitter submits transactions. Errors returned are always *SubmitError
type Submitter interface {
	Submit(ctx context.Context, tx *common.Transaction) (common.TransactionId, error)
	SubmitCbor(ctx context.Context, txCbor []byte) (common.TransactionId, error)
}

// Provider is a ledger that accepts transactions and answers UTXO queries
type Provider interface {
	Submitter
	Utxos() []common.Utxo
	FindUtxos(addr common.Address) []common.Utxo
	QueryUtxos(pred query.Predicate) *query.Query
	CurrentSlot() uint64
}
