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

package rules

import (
	"fmt"
	"strings"

	"github.com/blinklabs-io/utxoledger/ledger/common"
)

func joinInputs(inputs []common.TransactionInput) string {
	tmpInputs := make([]string, len(inputs))
	for idx, tmpInput := range inputs {
		tmpInputs[idx] = tmpInput.String()
	}
	return strings.Join(tmpInputs, ", ")
}

func joinHashes[T fmt.Stringer](hashes []T) string {
	tmpHashes := make([]string, len(hashes))
	for idx, tmpHash := range hashes {
		tmpHashes[idx] = tmpHash.String()
	}
	return strings.Join(tmpHashes, ", ")
}

func joinAddrs(addrs []common.Address) string {
	tmpAddrs := make([]string, len(addrs))
	for idx, tmpAddr := range addrs {
		tmpAddrs[idx] = tmpAddr.String()
	}
	return strings.Join(tmpAddrs, ", ")
}

type InputSetEmptyUtxoError struct{}

func (InputSetEmptyUtxoError) Error() string {
	return "input set empty"
}

type BadInputsUtxoError struct {
	Inputs []common.TransactionInput
}

func (e BadInputsUtxoError) Error() string {
	return "bad input(s): " + joinInputs(e.Inputs)
}

type BadCollateralInputsError struct {
	Inputs []common.TransactionInput
}

func (e BadCollateralInputsError) Error() string {
	return "bad collateral input(s): " + joinInputs(e.Inputs)
}

type BadReferenceInputsError struct {
	Inputs []common.TransactionInput
}

func (e BadReferenceInputsError) Error() string {
	return "bad reference input(s): " + joinInputs(e.Inputs)
}

type NonDisjointInputsError struct {
	Inputs []common.TransactionInput
	// Names of the two input sets that overlap
	Sets [2]string
}

func (e NonDisjointInputsError) Error() string {
	return fmt.Sprintf(
		"%s and %s are not disjoint: %s",
		e.Sets[0],
		e.Sets[1],
		joinInputs(e.Inputs),
	)
}

type OutsideValidityIntervalUtxoError struct {
	ValidityStart *uint64
	Ttl           *uint64
	Slot          uint64
}

// Expired reports whether the upper bound of the interval has passed
func (e OutsideValidityIntervalUtxoError) Expired() bool {
	return e.Ttl != nil && e.Slot >= *e.Ttl
}

func (e OutsideValidityIntervalUtxoError) Error() string {
	start, end := "-inf", "+inf"
	if e.ValidityStart != nil {
		start = fmt.Sprintf("%d", *e.ValidityStart)
	}
	if e.Ttl != nil {
		end = fmt.Sprintf("%d", *e.Ttl)
	}
	return fmt.Sprintf(
		"outside validity interval: interval [%s, %s), slot %d",
		start,
		end,
		e.Slot,
	)
}

type MaxTxSizeUtxoError struct {
	TxSize    uint64
	MaxTxSize uint64
}

func (e MaxTxSizeUtxoError) Error() string {
	return fmt.Sprintf(
		"transaction size too large: size %d, max %d",
		e.TxSize,
		e.MaxTxSize,
	)
}

type WrongNetworkError struct {
	NetId uint8
	Addrs []common.Address
}

func (e WrongNetworkError) Error() string {
	return "wrong network: " + joinAddrs(e.Addrs)
}

type WrongNetworkWithdrawalError struct {
	NetId uint8
	Addrs []common.Address
}

func (e WrongNetworkWithdrawalError) Error() string {
	return "wrong network withdrawals: " + joinAddrs(e.Addrs)
}

type WrongNetworkInTxBodyError struct {
	Expected uint8
	Supplied uint8
}

func (e WrongNetworkInTxBodyError) Error() string {
	return fmt.Sprintf(
		"wrong network ID in transaction body: expected %d, supplied %d",
		e.Expected,
		e.Supplied,
	)
}

type OutputTooSmallUtxoError struct {
	Outputs []common.TransactionOutput
	// Minimum lovelace for each offending output
	MinCoins []common.Coin
}

func (e OutputTooSmallUtxoError) Error() string {
	tmpOutputs := make([]string, len(e.Outputs))
	for idx, tmpOutput := range e.Outputs {
		tmpOutputs[idx] = fmt.Sprintf(
			"%s (%d < %d)",
			tmpOutput.Address.String(),
			tmpOutput.Amount.Coin,
			e.MinCoins[idx],
		)
	}
	return "output too small: " + strings.Join(tmpOutputs, ", ")
}

type OutputTooBigUtxoError struct {
	Outputs []common.TransactionOutput
	MaxSize uint64
}

func (e OutputTooBigUtxoError) Error() string {
	tmpOutputs := make([]string, len(e.Outputs))
	for idx, tmpOutput := range e.Outputs {
		tmpOutputs[idx] = tmpOutput.Address.String()
	}
	return fmt.Sprintf(
		"output value too big (max %d bytes): %s",
		e.MaxSize,
		strings.Join(tmpOutputs, ", "),
	)
}

type FeeTooSmallUtxoError struct {
	Provided common.Coin
	Min      common.Unbounded
}

func (e FeeTooSmallUtxoError) Error() string {
	return fmt.Sprintf(
		"fee too small: provided %d, minimum %s",
		e.Provided,
		e.Min.String(),
	)
}

type ValueNotConservedUtxoError struct {
	Consumed common.ValueUnbounded
	Produced common.ValueUnbounded
}

func (e ValueNotConservedUtxoError) Error() string {
	return fmt.Sprintf(
		"value not conserved: consumed %s, produced %s",
		e.Consumed.String(),
		e.Produced.String(),
	)
}

type TriesToForgeAdaError struct{}

func (TriesToForgeAdaError) Error() string {
	return "mint contains the native currency policy"
}

type MissingTransactionMetadataError struct {
	Hash common.Blake2b256
}

func (e MissingTransactionMetadataError) Error() string {
	return "missing transaction metadata: " + e.Hash.String()
}

type MissingTransactionAuxiliaryDataHashError struct {
	Hash common.Blake2b256
}

func (e MissingTransactionAuxiliaryDataHashError) Error() string {
	return "missing transaction auxiliary data hash: " + e.Hash.String()
}

type ConflictingMetadataHashError struct {
	Supplied common.Blake2b256
	Expected common.Blake2b256
}

func (e ConflictingMetadataHashError) Error() string {
	return fmt.Sprintf(
		"conflicting metadata hash: supplied %s, expected %s",
		e.Supplied.String(),
		e.Expected.String(),
	)
}

type PPViewHashesDontMatchError struct {
	Supplied common.Blake2b256
	Expected common.Blake2b256
}

func (e PPViewHashesDontMatchError) Error() string {
	return fmt.Sprintf(
		"script data hash mismatch: supplied %s, expected %s",
		e.Supplied.String(),
		e.Expected.String(),
	)
}

type MissingScriptDataHashError struct {
	Expected common.Blake2b256
}

func (e MissingScriptDataHashError) Error() string {
	return "missing script data hash, expected " + e.Expected.String()
}

type UnexpectedScriptDataHashError struct {
	Supplied common.Blake2b256
}

func (e UnexpectedScriptDataHashError) Error() string {
	return "unexpected script data hash: " + e.Supplied.String()
}

type InvalidWitnessesError struct {
	// Verification keys whose signature did not verify
	Vkeys [][]byte
}

func (e InvalidWitnessesError) Error() string {
	tmpKeys := make([]string, len(e.Vkeys))
	for idx, vkey := range e.Vkeys {
		tmpKeys[idx] = fmt.Sprintf("%x", vkey)
	}
	return "invalid vkey witness(es): " + strings.Join(tmpKeys, ", ")
}

type MissingVKeyWitnessesError struct {
	KeyHashes []common.KeyHash
}

func (e MissingVKeyWitnessesError) Error() string {
	return "missing vkey witness(es): " + joinHashes(e.KeyHashes)
}

type MissingScriptWitnessesError struct {
	Hashes []common.ScriptHash
}

func (e MissingScriptWitnessesError) Error() string {
	return "missing script witness(es): " + joinHashes(e.Hashes)
}

type ExtraneousScriptWitnessesError struct {
	Hashes []common.ScriptHash
}

func (e ExtraneousScriptWitnessesError) Error() string {
	return "extraneous script witness(es): " + joinHashes(e.Hashes)
}

type NativeScriptFailedError struct {
	Hash common.ScriptHash
}

func (e NativeScriptFailedError) Error() string {
	return "native script failed: " + e.Hash.String()
}

type StakeAlreadyRegisteredError struct {
	Credential common.Credential
}

func (e StakeAlreadyRegisteredError) Error() string {
	return "stake credential already registered: " + e.Credential.String()
}

type StakeNotRegisteredError struct {
	Credential common.Credential
}

func (e StakeNotRegisteredError) Error() string {
	return "stake credential not registered: " + e.Credential.String()
}

type StakeNonZeroRewardsError struct {
	Credential common.Credential
	Balance    common.Coin
}

func (e StakeNonZeroRewardsError) Error() string {
	return fmt.Sprintf(
		"cannot deregister stake credential %s with reward balance %d",
		e.Credential.String(),
		e.Balance,
	)
}

type DelegateToUnregisteredPoolError struct {
	Pool common.KeyHash
}

func (e DelegateToUnregisteredPoolError) Error() string {
	return "delegation to unregistered pool: " + e.Pool.String()
}

type PoolNotRegisteredError struct {
	Pool common.KeyHash
}

func (e PoolNotRegisteredError) Error() string {
	return "pool not registered: " + e.Pool.String()
}

type DRepAlreadyRegisteredError struct {
	Credential common.Credential
}

func (e DRepAlreadyRegisteredError) Error() string {
	return "DRep already registered: " + e.Credential.String()
}

type DRepNotRegisteredError struct {
	Credential common.Credential
}

func (e DRepNotRegisteredError) Error() string {
	return "DRep not registered: " + e.Credential.String()
}

type InvalidCertificateDepositError struct {
	CertType uint
	Supplied common.Coin
	Expected common.Coin
}

func (e InvalidCertificateDepositError) Error() string {
	return fmt.Sprintf(
		"invalid deposit for certificate type %d: supplied %d, expected %d",
		e.CertType,
		e.Supplied,
		e.Expected,
	)
}

type WithdrawalFromUnregisteredRewardAccountError struct {
	RewardAccount common.Address
}

func (e WithdrawalFromUnregisteredRewardAccountError) Error() string {
	return "withdrawal from unregistered reward account: " + e.RewardAccount.String()
}

type IncorrectWithdrawalAmountError struct {
	RewardAccount common.Address
	Supplied      common.Coin
	Balance       common.Coin
}

func (e IncorrectWithdrawalAmountError) Error() string {
	return fmt.Sprintf(
		"incorrect withdrawal amount for %s: supplied %d, balance %d",
		e.RewardAccount.String(),
		e.Supplied,
		e.Balance,
	)
}

type NoCollateralInputsError struct{}

func (NoCollateralInputsError) Error() string {
	return "no collateral inputs"
}

type TooManyCollateralInputsError struct {
	Provided uint
	Max      uint
}

func (e TooManyCollateralInputsError) Error() string {
	return fmt.Sprintf(
		"too many collateral inputs: provided %d, maximum %d",
		e.Provided,
		e.Max,
	)
}

type ScriptLockedCollateralError struct {
	Inputs []common.TransactionInput
}

func (e ScriptLockedCollateralError) Error() string {
	return "collateral locked by script: " + joinInputs(e.Inputs)
}

type CollateralContainsNonAdaError struct {
	Provided common.ValueUnbounded
}

func (e CollateralContainsNonAdaError) Error() string {
	return "collateral contains non-ADA assets: " + e.Provided.String()
}

type InsufficientCollateralError struct {
	Provided common.Unbounded
	Required common.Unbounded
}

func (e InsufficientCollateralError) Error() string {
	return fmt.Sprintf(
		"insufficient collateral: provided %s, required %s",
		e.Provided.String(),
		e.Required.String(),
	)
}

type IncorrectTotalCollateralFieldError struct {
	Provided common.Unbounded
	Declared common.Coin
}

func (e IncorrectTotalCollateralFieldError) Error() string {
	return fmt.Sprintf(
		"incorrect total collateral field: balance %s, declared %d",
		e.Provided.String(),
		e.Declared,
	)
}

// InvalidExUnitsError reports redeemer execution units that are negative or whose sum
// overflows
type InvalidExUnitsError struct {
	Err error
}

func (e InvalidExUnitsError) Error() string {
	return fmt.Sprintf("invalid redeemer execution units: %s", e.Err)
}

func (e InvalidExUnitsError) Unwrap() error {
	return e.Err
}

type ExUnitsTooBigUtxoError struct {
	Total common.ExUnits
	Max   common.ExUnits
}

func (e ExUnitsTooBigUtxoError) Error() string {
	return fmt.Sprintf(
		"execution units too big: memory %d/%d, steps %d/%d",
		e.Total.Memory,
		e.Max.Memory,
		e.Total.Steps,
		e.Max.Steps,
	)
}

// ScriptPurpose identifies what a redeemer is attached to
type ScriptPurpose struct {
	Tag   common.RedeemerTag
	Index uint32
}

func (p ScriptPurpose) String() string {
	return fmt.Sprintf("%s:%d", p.Tag.String(), p.Index)
}

type ExtraRedeemersError struct {
	Purposes []ScriptPurpose
}

func (e ExtraRedeemersError) Error() string {
	return "extra redeemer(s): " + joinHashes(e.Purposes)
}

type MissingRedeemersError struct {
	Purposes []ScriptPurpose
}

func (e MissingRedeemersError) Error() string {
	return "missing redeemer(s): " + joinHashes(e.Purposes)
}

type MissingDatumError struct {
	Input common.TransactionInput
}

func (e MissingDatumError) Error() string {
	return "missing datum for script-locked input: " + e.Input.String()
}

type PlutusScriptFailedError struct {
	ScriptHash common.ScriptHash
	Purpose    ScriptPurpose
	Logs       []string
	Err        error
}

func (e PlutusScriptFailedError) Error() string {
	return fmt.Sprintf(
		"plutus script %s failed for %s: %s",
		e.ScriptHash.String(),
		e.Purpose.String(),
		e.Err,
	)
}

func (e PlutusScriptFailedError) Unwrap() error {
	return e.Err
}

type ValidityFlagMismatchError struct {
	// Flag supplied in the transaction
	Supplied bool
	// Outcome of evaluating the scripts
	Evaluated bool
}

func (e ValidityFlagMismatchError) Error() string {
	return fmt.Sprintf(
		"validity flag mismatch: supplied %t, scripts evaluated to %t",
		e.Supplied,
		e.Evaluated,
	)
}
