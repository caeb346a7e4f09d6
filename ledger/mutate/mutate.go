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

// Package mutate contains the state transitions applied by a transaction that has passed
// validation. Mutators never modify the state they are given
package mutate

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/state"
)

type MutatorFunc func(ctx *common.Context, st *state.State, tx *common.Transaction) (*state.State, error)

// DefaultMutators is the canonical application order. Inputs are removed before outputs are
// added, so a transaction can never spend its own outputs
var DefaultMutators = []MutatorFunc{
	ConsumeCollateral,
	ConsumeInputs,
	ProduceOutputs,
	ApplyCertificates,
	ApplyWithdrawals,
}

func removeInputs(st *state.State, inputs []common.TransactionInput) error {
	for _, input := range inputs {
		if _, err := st.RemoveUtxo(input); err != nil {
			return InputAlreadySpentError{Input: input}
		}
	}
	return nil
}

func addOutputs(st *state.State, utxos []common.Utxo) error {
	for _, utxo := range utxos {
		if err := st.AddUtxo(utxo); err != nil {
			return OutputAlreadyExistsError{Output: utxo.Id}
		}
	}
	return nil
}

// ConsumeCollateral forfeits the collateral of a transaction whose scripts failed and
// produces its collateral return output. Valid transactions pass through
func ConsumeCollateral(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if tx.Valid {
		return st, nil
	}
	next := st.Clone()
	if err := removeInputs(next, tx.Body.Collateral); err != nil {
		return nil, err
	}
	produced, err := tx.Produced()
	if err != nil {
		return nil, err
	}
	if err := addOutputs(next, produced); err != nil {
		return nil, err
	}
	return next, nil
}

func ConsumeInputs(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if !tx.Valid {
		return st, nil
	}
	next := st.Clone()
	if err := removeInputs(next, tx.Body.Inputs); err != nil {
		return nil, err
	}
	return next, nil
}

// ProduceOutputs inserts the outputs of the transaction keyed by the transaction ID and
// output index
func ProduceOutputs(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if !tx.Valid {
		return st, nil
	}
	next := st.Clone()
	produced, err := tx.Produced()
	if err != nil {
		return nil, err
	}
	if err := addOutputs(next, produced); err != nil {
		return nil, err
	}
	return next, nil
}

func ApplyCertificates(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if !tx.Valid || len(tx.Body.Certificates) == 0 {
		return st, nil
	}
	pp := ctx.ProtocolParams
	next := st.Clone()
	for _, cert := range tx.Body.Certificates {
		switch c := cert.(type) {
		case *common.StakeRegistrationCertificate:
			next.RegisterStake(c.StakeCredential, common.Coin(pp.KeyDeposit))
		case *common.RegistrationCertificate:
			next.RegisterStake(c.StakeCredential, c.Amount)
		case *common.StakeDeregistrationCertificate:
			next.DeregisterStake(c.StakeCredential)
		case *common.DeregistrationCertificate:
			next.DeregisterStake(c.StakeCredential)
		case *common.StakeDelegationCertificate:
			next.DelegateStake(c.StakeCredential, c.PoolKeyHash)
		case *common.PoolRegistrationCertificate:
			next.RegisterPool(*c, common.Coin(pp.PoolDeposit))
		case *common.PoolRetirementCertificate:
			next.RetirePool(c.PoolKeyHash, c.Epoch)
		case *common.VoteDelegationCertificate:
			next.DelegateVote(c.StakeCredential, c.Drep)
		case *common.RegistrationDrepCertificate:
			next.RegisterDRep(c.DrepCredential, c.Amount)
		case *common.DeregistrationDrepCertificate:
			next.DeregisterDRep(c.DrepCredential)
		}
	}
	return next, nil
}

// ApplyWithdrawals empties the withdrawn reward accounts. Accounts deregistered by the same
// transaction are already gone
func ApplyWithdrawals(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if !tx.Valid || len(tx.Body.Withdrawals) == 0 {
		return st, nil
	}
	next := st.Clone()
	for _, withdrawal := range tx.Body.Withdrawals {
		cred, ok := withdrawal.RewardAccount.StakeCredential()
		if !ok {
			continue
		}
		if _, registered := next.RewardBalance(cred); !registered {
			continue
		}
		if err := next.SetRewardBalance(cred, 0); err != nil {
			return nil, err
		}
	}
	return next, nil
}
