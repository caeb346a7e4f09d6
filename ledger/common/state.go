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

package common

import "errors"

// ErrUtxoNotFound is returned by UtxoState implementations for unknown inputs
var ErrUtxoNotFound = errors.New("utxo not found")

// UtxoState defines the interface for querying the UTxO set
type UtxoState interface {
	UtxoById(TransactionInput) (Utxo, error)
}

// CertState defines the interface for querying stake, pool and DRep registrations
type CertState interface {
	// StakeRegistration returns the deposit paid for a registered stake credential
	StakeRegistration(Credential) (Coin, bool)
	// RewardBalance returns the reward balance of a registered stake credential
	RewardBalance(Credential) (Coin, bool)
	PoolRegistration(KeyHash) (PoolRegistrationCertificate, bool)
	// DRepRegistration returns the deposit paid for a registered DRep credential
	DRepRegistration(Credential) (Coin, bool)
}

// LedgerState defines the read-only view of ledger state used by validators
type LedgerState interface {
	UtxoState
	CertState
}
