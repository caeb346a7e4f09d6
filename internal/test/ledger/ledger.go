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

package test_ledger

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// Compile-time checks that MockLedgerState implements LedgerState and all child interfaces
var (
	_ common.LedgerState = (*MockLedgerState)(nil)
	_ common.UtxoState   = (*MockLedgerState)(nil)
	_ common.CertState   = (*MockLedgerState)(nil)
)

// MockLedgerState is the canonical internal mock used by tests. Tests should construct
// &test_ledger.MockLedgerState{} and configure fields (e.g. Utxos, UtxoByIdFunc) to control
// behavior
type MockLedgerState struct {
	Utxos []common.Utxo
	// UtxoByIdFunc optionally overrides the lookup in Utxos
	UtxoByIdFunc       func(common.TransactionInput) (common.Utxo, error)
	StakeRegistrations map[common.Credential]common.Coin
	RewardBalances     map[common.Credential]common.Coin
	PoolRegistrations  []common.PoolRegistrationCertificate
	DRepRegistrations  map[common.Credential]common.Coin
}

func (m *MockLedgerState) UtxoById(
	id common.TransactionInput,
) (common.Utxo, error) {
	if m.UtxoByIdFunc != nil {
		return m.UtxoByIdFunc(id)
	}
	for _, utxo := range m.Utxos {
		if utxo.Id == id {
			return utxo, nil
		}
	}
	return common.Utxo{}, common.ErrUtxoNotFound
}

func (m *MockLedgerState) StakeRegistration(
	cred common.Credential,
) (common.Coin, bool) {
	deposit, ok := m.StakeRegistrations[cred]
	return deposit, ok
}

func (m *MockLedgerState) RewardBalance(
	cred common.Credential,
) (common.Coin, bool) {
	if _, ok := m.StakeRegistrations[cred]; !ok {
		return 0, false
	}
	return m.RewardBalances[cred], true
}

func (m *MockLedgerState) PoolRegistration(
	pool common.KeyHash,
) (common.PoolRegistrationCertificate, bool) {
	for _, cert := range m.PoolRegistrations {
		if cert.Operator == pool {
			return cert, true
		}
	}
	return common.PoolRegistrationCertificate{}, false
}

func (m *MockLedgerState) DRepRegistration(
	cred common.Credential,
) (common.Coin, bool) {
	deposit, ok := m.DRepRegistrations[cred]
	return deposit, ok
}
