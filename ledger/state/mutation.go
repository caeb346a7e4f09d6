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

package state

import (
	"fmt"

	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// The functions in this file modify the State in place. They are only used on a State
// returned by Clone, before it is published

func (s *State) AddUtxo(utxo common.Utxo) error {
	if s.utxos.Has(utxo) {
		return fmt.Errorf("utxo already exists: %s", utxo.Id.String())
	}
	s.utxos.ReplaceOrInsert(utxo)
	return nil
}

func (s *State) RemoveUtxo(id common.TransactionInput) (common.Utxo, error) {
	utxo, ok := s.utxos.Delete(common.Utxo{Id: id})
	if !ok {
		return common.Utxo{}, fmt.Errorf("%w: %s", common.ErrUtxoNotFound, id.String())
	}
	return utxo, nil
}

func (s *State) RegisterStake(cred common.Credential, deposit common.Coin) {
	s.stake[cred] = StakeAccount{Deposit: deposit}
}

func (s *State) DeregisterStake(cred common.Credential) {
	delete(s.stake, cred)
}

func (s *State) DelegateStake(cred common.Credential, pool common.KeyHash) {
	account := s.stake[cred]
	account.Pool = &pool
	s.stake[cred] = account
}

func (s *State) DelegateVote(cred common.Credential, drep common.Drep) {
	account := s.stake[cred]
	account.Drep = &drep
	s.stake[cred] = account
}

// SetRewardBalance sets the reward balance of a registered stake credential. Rewards are
// computed outside the ledger and credited through this function
func (s *State) SetRewardBalance(cred common.Credential, amount common.Coin) error {
	account, ok := s.stake[cred]
	if !ok {
		return fmt.Errorf("stake credential not registered: %s", cred.String())
	}
	account.Reward = amount
	s.stake[cred] = account
	return nil
}

func (s *State) RegisterPool(params common.PoolRegistrationCertificate, deposit common.Coin) {
	poolState, ok := s.pools[params.Operator]
	if ok {
		// Re-registration updates the parameters and cancels a pending retirement
		poolState.Params = params
		poolState.RetiringEpoch = nil
		s.pools[params.Operator] = poolState
		return
	}
	s.pools[params.Operator] = PoolState{Params: params, Deposit: deposit}
}

func (s *State) RetirePool(pool common.KeyHash, epoch uint64) {
	poolState, ok := s.pools[pool]
	if !ok {
		return
	}
	poolState.RetiringEpoch = &epoch
	s.pools[pool] = poolState
}

func (s *State) RegisterDRep(cred common.Credential, deposit common.Coin) {
	s.dreps[cred] = deposit
}

func (s *State) DeregisterDRep(cred common.Credential) {
	delete(s.dreps, cred)
}
