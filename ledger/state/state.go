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

// Package state holds the concrete ledger state: the UTXO set plus stake, pool and DRep
// bookkeeping. A State is treated as immutable once published; mutators work on a Clone
package state

import (
	"fmt"
	"maps"

	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/google/btree"
)

// Degree of the UTXO B-tree
const utxoTreeDegree = 32

// StakeAccount tracks a registered stake credential
type StakeAccount struct {
	Deposit common.Coin
	Reward  common.Coin
	Pool    *common.KeyHash
	Drep    *common.Drep
}

// PoolState tracks a registered stake pool
type PoolState struct {
	Params        common.PoolRegistrationCertificate
	Deposit       common.Coin
	RetiringEpoch *uint64
}

type State struct {
	utxos *btree.BTreeG[common.Utxo]
	stake map[common.Credential]StakeAccount
	pools map[common.KeyHash]PoolState
	dreps map[common.Credential]common.Coin
}

var _ common.LedgerState = (*State)(nil)

func utxoLess(a, b common.Utxo) bool {
	return a.Id.Compare(b.Id) < 0
}

// New returns an empty state
func New() *State {
	return &State{
		utxos: btree.NewG(utxoTreeDegree, utxoLess),
		stake: make(map[common.Credential]StakeAccount),
		pools: make(map[common.KeyHash]PoolState),
		dreps: make(map[common.Credential]common.Coin),
	}
}

// NewFromUtxos returns a state holding the provided UTXOs
func NewFromUtxos(utxos []common.Utxo) (*State, error) {
	s := New()
	for _, utxo := range utxos {
		if err := s.AddUtxo(utxo); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Clone returns an independent copy. The UTXO tree is copied lazily, so cloning is cheap.
// Clone must not be called concurrently on the same State
func (s *State) Clone() *State {
	return &State{
		utxos: s.utxos.Clone(),
		stake: maps.Clone(s.stake),
		pools: maps.Clone(s.pools),
		dreps: maps.Clone(s.dreps),
	}
}

func (s *State) UtxoById(id common.TransactionInput) (common.Utxo, error) {
	utxo, ok := s.utxos.Get(common.Utxo{Id: id})
	if !ok {
		return common.Utxo{}, fmt.Errorf("%w: %s", common.ErrUtxoNotFound, id.String())
	}
	return utxo, nil
}

func (s *State) HasUtxo(id common.TransactionInput) bool {
	return s.utxos.Has(common.Utxo{Id: id})
}

// Ascend calls fn for each UTXO in ascending input order until fn returns false
func (s *State) Ascend(fn func(common.Utxo) bool) {
	s.utxos.Ascend(fn)
}

// Utxos returns every UTXO in ascending input order
func (s *State) Utxos() []common.Utxo {
	ret := make([]common.Utxo, 0, s.utxos.Len())
	s.utxos.Ascend(func(utxo common.Utxo) bool {
		ret = append(ret, utxo)
		return true
	})
	return ret
}

// UtxosByAddress returns the UTXOs owned by the address in ascending input order
func (s *State) UtxosByAddress(addr common.Address) []common.Utxo {
	var ret []common.Utxo
	s.utxos.Ascend(func(utxo common.Utxo) bool {
		if utxo.Output.Address == addr {
			ret = append(ret, utxo)
		}
		return true
	})
	return ret
}

func (s *State) UtxoCount() int {
	return s.utxos.Len()
}

func (s *State) StakeRegistration(cred common.Credential) (common.Coin, bool) {
	account, ok := s.stake[cred]
	if !ok {
		return 0, false
	}
	return account.Deposit, true
}

func (s *State) RewardBalance(cred common.Credential) (common.Coin, bool) {
	account, ok := s.stake[cred]
	if !ok {
		return 0, false
	}
	return account.Reward, true
}

func (s *State) StakeAccount(cred common.Credential) (StakeAccount, bool) {
	account, ok := s.stake[cred]
	return account, ok
}

func (s *State) PoolRegistration(pool common.KeyHash) (common.PoolRegistrationCertificate, bool) {
	poolState, ok := s.pools[pool]
	if !ok {
		return common.PoolRegistrationCertificate{}, false
	}
	return poolState.Params, true
}

func (s *State) Pool(pool common.KeyHash) (PoolState, bool) {
	poolState, ok := s.pools[pool]
	return poolState, ok
}

func (s *State) DRepRegistration(cred common.Credential) (common.Coin, bool) {
	deposit, ok := s.dreps[cred]
	return deposit, ok
}
