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
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"slices"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/common/script"
)

// ValidatorFunc checks a single invariant of a transaction against the ledger state. It
// returns nil or an error describing the violation
type ValidatorFunc func(ctx *common.Context, ls common.LedgerState, tx *common.Transaction) error

var ErrNoScriptEvaluator = errors.New("no script evaluator configured")

// FullValidators is the complete set of checks in canonical order
var FullValidators = []ValidatorFunc{
	UtxoValidateInputSetEmptyUtxo,
	UtxoValidateBadInputsUtxo,
	UtxoValidateBadCollateralInputs,
	UtxoValidateBadReferenceInputs,
	UtxoValidateDisjointInputs,
	UtxoValidateOutsideValidityIntervalUtxo,
	UtxoValidateMaxTxSizeUtxo,
	UtxoValidateWrongNetwork,
	UtxoValidateWrongNetworkWithdrawal,
	UtxoValidateTransactionNetworkId,
	UtxoValidateOutputTooSmallUtxo,
	UtxoValidateOutputTooBigUtxo,
	UtxoValidateFeeTooSmallUtxo,
	UtxoValidateValueNotConservedUtxo,
	UtxoValidateTriesToForgeAda,
	UtxoValidateMetadata,
	UtxoValidateScriptDataHash,
	UtxoValidateSignatures,
	UtxoValidateRequiredVKeyWitnesses,
	UtxoValidateScriptWitnesses,
	UtxoValidateNativeScripts,
	UtxoValidateCertificates,
	UtxoValidateWithdrawals,
	UtxoValidateCollateral,
	UtxoValidateExUnitsTooBigUtxo,
	UtxoValidateRedeemerPointers,
	UtxoValidatePlutusScripts,
}

// MinimalValidators only checks input availability, the validity interval and value
// conservation
var MinimalValidators = []ValidatorFunc{
	UtxoValidateInputSetEmptyUtxo,
	UtxoValidateBadInputsUtxo,
	UtxoValidateBadCollateralInputs,
	UtxoValidateBadReferenceInputs,
	UtxoValidateOutsideValidityIntervalUtxo,
	UtxoValidateValueNotConservedUtxo,
}

func resolver(ls common.UtxoState) script.ResolverFunc {
	return func(input common.TransactionInput) (common.Utxo, bool) {
		utxo, err := ls.UtxoById(input)
		if err != nil {
			return common.Utxo{}, false
		}
		return utxo, true
	}
}

func resolveAll(ls common.UtxoState, inputs []common.TransactionInput) []common.Utxo {
	resolve := resolver(ls)
	ret := make([]common.Utxo, 0, len(inputs))
	for _, input := range inputs {
		if utxo, ok := resolve(input); ok {
			ret = append(ret, utxo)
		}
	}
	return ret
}

func missingInputs(ls common.UtxoState, inputs []common.TransactionInput) []common.TransactionInput {
	var ret []common.TransactionInput
	for _, input := range inputs {
		if _, err := ls.UtxoById(input); err != nil {
			ret = append(ret, input)
		}
	}
	return ret
}

// availableScripts returns the scripts supplied in the witness set along with those
// attached to spent and referenced outputs
func availableScripts(ls common.UtxoState, tx *common.Transaction) map[common.ScriptHash]common.Script {
	ret := referenceScripts(ls, tx)
	for _, s := range tx.WitnessSet.Scripts() {
		ret[s.Hash()] = s
	}
	return ret
}

func referenceScripts(ls common.UtxoState, tx *common.Transaction) map[common.ScriptHash]common.Script {
	ret := map[common.ScriptHash]common.Script{}
	for _, utxo := range resolveAll(ls, slices.Concat(tx.Body.Inputs, tx.Body.ReferenceInputs)) {
		if utxo.Output.ScriptRef != nil {
			ret[utxo.Output.ScriptRef.Hash()] = utxo.Output.ScriptRef
		}
	}
	return ret
}

func sortHashes(hashes []common.Blake2b224) []common.Blake2b224 {
	slices.SortFunc(hashes, func(a, b common.Blake2b224) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	return hashes
}

func UtxoValidateInputSetEmptyUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	if len(tx.Body.Inputs) > 0 {
		return nil
	}
	return InputSetEmptyUtxoError{}
}

func UtxoValidateBadInputsUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	badInputs := missingInputs(ls, tx.Body.Inputs)
	if len(badInputs) == 0 {
		return nil
	}
	return BadInputsUtxoError{
		Inputs: badInputs,
	}
}

func UtxoValidateBadCollateralInputs(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	badInputs := missingInputs(ls, tx.Body.Collateral)
	if len(badInputs) == 0 {
		return nil
	}
	return BadCollateralInputsError{
		Inputs: badInputs,
	}
}

func UtxoValidateBadReferenceInputs(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	badInputs := missingInputs(ls, tx.Body.ReferenceInputs)
	if len(badInputs) == 0 {
		return nil
	}
	return BadReferenceInputsError{
		Inputs: badInputs,
	}
}

func UtxoValidateDisjointInputs(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	sets := []struct {
		name   string
		inputs []common.TransactionInput
	}{
		{"inputs", tx.Body.Inputs},
		{"collateral inputs", tx.Body.Collateral},
		{"reference inputs", tx.Body.ReferenceInputs},
	}
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			var overlap []common.TransactionInput
			for _, input := range sets[i].inputs {
				if slices.Contains(sets[j].inputs, input) {
					overlap = append(overlap, input)
				}
			}
			if len(overlap) > 0 {
				return NonDisjointInputsError{
					Inputs: overlap,
					Sets:   [2]string{sets[i].name, sets[j].name},
				}
			}
		}
	}
	return nil
}

func UtxoValidateOutsideValidityIntervalUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	start := tx.Body.ValidityIntervalStart
	ttl := tx.Body.Ttl
	if (start == nil || ctx.Slot >= *start) && (ttl == nil || ctx.Slot < *ttl) {
		return nil
	}
	return OutsideValidityIntervalUtxoError{
		ValidityStart: start,
		Ttl:           ttl,
		Slot:          ctx.Slot,
	}
}

func UtxoValidateMaxTxSizeUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	txSize, err := tx.Size()
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	// #nosec G115
	if uint64(txSize) <= ctx.ProtocolParams.MaxTxSize {
		return nil
	}
	return MaxTxSizeUtxoError{
		TxSize:    uint64(txSize), // #nosec G115
		MaxTxSize: ctx.ProtocolParams.MaxTxSize,
	}
}

func allOutputs(tx *common.Transaction) []common.TransactionOutput {
	if tx.Body.CollateralReturn == nil {
		return tx.Body.Outputs
	}
	return append(slices.Clone(tx.Body.Outputs), *tx.Body.CollateralReturn)
}

func UtxoValidateWrongNetwork(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	var badAddrs []common.Address
	for _, tmpOutput := range allOutputs(tx) {
		if tmpOutput.Address.NetworkId() != ctx.NetworkId {
			badAddrs = append(badAddrs, tmpOutput.Address)
		}
	}
	if len(badAddrs) == 0 {
		return nil
	}
	return WrongNetworkError{
		NetId: ctx.NetworkId,
		Addrs: badAddrs,
	}
}

func UtxoValidateWrongNetworkWithdrawal(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	var badAddrs []common.Address
	for _, withdrawal := range tx.Body.Withdrawals {
		if withdrawal.RewardAccount.NetworkId() != ctx.NetworkId {
			badAddrs = append(badAddrs, withdrawal.RewardAccount)
		}
	}
	if len(badAddrs) == 0 {
		return nil
	}
	return WrongNetworkWithdrawalError{
		NetId: ctx.NetworkId,
		Addrs: badAddrs,
	}
}

func UtxoValidateTransactionNetworkId(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	if tx.Body.NetworkId == nil || *tx.Body.NetworkId == ctx.NetworkId {
		return nil
	}
	return WrongNetworkInTxBodyError{
		Expected: ctx.NetworkId,
		Supplied: *tx.Body.NetworkId,
	}
}

func UtxoValidateOutputTooSmallUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	var badOutputs []common.TransactionOutput
	var minCoins []common.Coin
	for _, tmpOutput := range allOutputs(tx) {
		minCoin := ctx.ProtocolParams.MinUtxoValue(tmpOutput)
		if tmpOutput.Amount.Coin < minCoin {
			badOutputs = append(badOutputs, tmpOutput)
			minCoins = append(minCoins, minCoin)
		}
	}
	if len(badOutputs) == 0 {
		return nil
	}
	return OutputTooSmallUtxoError{
		Outputs:  badOutputs,
		MinCoins: minCoins,
	}
}

func UtxoValidateOutputTooBigUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	maxSize := ctx.ProtocolParams.MaxValueSize
	if maxSize == 0 {
		return nil
	}
	var badOutputs []common.TransactionOutput
	for _, tmpOutput := range allOutputs(tx) {
		valueCbor, err := cbor.Encode(tmpOutput.Amount)
		if err != nil {
			return fmt.Errorf("encode output value: %w", err)
		}
		if uint64(len(valueCbor)) > maxSize {
			badOutputs = append(badOutputs, tmpOutput)
		}
	}
	if len(badOutputs) == 0 {
		return nil
	}
	return OutputTooBigUtxoError{
		Outputs: badOutputs,
		MaxSize: maxSize,
	}
}

// MinFee returns the minimum fee for the transaction under the context's protocol parameters
func MinFee(ctx *common.Context, tx *common.Transaction) (common.Unbounded, error) {
	txSize, err := tx.Size()
	if err != nil {
		return common.Unbounded{}, fmt.Errorf("encode transaction: %w", err)
	}
	exUnits, err := tx.WitnessSet.Redeemers.TotalExUnits()
	if err != nil {
		return common.Unbounded{}, InvalidExUnitsError{Err: err}
	}
	minFee, err := ctx.ProtocolParams.MinFee(
		uint64(txSize), // #nosec G115
		exUnits,
	)
	if err != nil {
		return common.Unbounded{}, InvalidExUnitsError{Err: err}
	}
	return minFee, nil
}

func UtxoValidateFeeTooSmallUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	minFee, err := MinFee(ctx, tx)
	if err != nil {
		return err
	}
	if tx.Body.Fee.Unbounded().Cmp(minFee) >= 0 {
		return nil
	}
	return FeeTooSmallUtxoError{
		Provided: tx.Body.Fee,
		Min:      minFee,
	}
}

// ConsumedValue returns the value flowing into a transaction: resolved inputs, withdrawals,
// deposit refunds and minted assets. Burned assets count as negative mint
func ConsumedValue(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) common.ValueUnbounded {
	var ret common.ValueUnbounded
	for _, utxo := range resolveAll(ls, tx.Body.Inputs) {
		ret = ret.Add(utxo.Output.Amount.Unbounded())
	}
	for _, withdrawal := range tx.Body.Withdrawals {
		ret.Coin = ret.Coin.Add(withdrawal.Amount.Unbounded())
	}
	_, refunds := common.CertificateDeposits(tx.Body.Certificates, ctx.ProtocolParams, ls)
	ret.Coin = ret.Coin.Add(refunds)
	ret.Assets = common.AddAssets(ret.Assets, tx.Body.Mint)
	return ret
}

// ProducedValue returns the value flowing out of a transaction: outputs, the fee and deposits
func ProducedValue(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) common.ValueUnbounded {
	var ret common.ValueUnbounded
	for _, tmpOutput := range tx.Body.Outputs {
		ret = ret.Add(tmpOutput.Amount.Unbounded())
	}
	ret.Coin = ret.Coin.Add(tx.Body.Fee.Unbounded())
	deposits, _ := common.CertificateDeposits(tx.Body.Certificates, ctx.ProtocolParams, ls)
	ret.Coin = ret.Coin.Add(deposits)
	return ret
}

func UtxoValidateValueNotConservedUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	consumed := ConsumedValue(ctx, ls, tx)
	produced := ProducedValue(ctx, ls, tx)
	if consumed.Equal(produced) {
		return nil
	}
	return ValueNotConservedUtxoError{
		Consumed: consumed,
		Produced: produced,
	}
}

func UtxoValidateTriesToForgeAda(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	// The native currency is identified by the empty policy ID
	if slices.Contains(tx.Body.Mint.Policies(), common.PolicyId{}) {
		return TriesToForgeAdaError{}
	}
	return nil
}

func UtxoValidateMetadata(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	auxHash := tx.AuxDataHash()
	bodyHash := tx.Body.AuxDataHash
	switch {
	case auxHash == nil && bodyHash == nil:
		return nil
	case auxHash == nil:
		return MissingTransactionMetadataError{Hash: *bodyHash}
	case bodyHash == nil:
		return MissingTransactionAuxiliaryDataHashError{Hash: *auxHash}
	case *auxHash != *bodyHash:
		return ConflictingMetadataHashError{
			Supplied: *bodyHash,
			Expected: *auxHash,
		}
	}
	return nil
}

// plutusPurposes returns the script purposes guarded by Plutus scripts, with their scripts
func plutusPurposes(
	purposes []script.Purpose,
	scripts map[common.ScriptHash]common.Script,
) ([]script.Purpose, map[common.ScriptHash]common.PlutusScript) {
	var ret []script.Purpose
	plutusScripts := map[common.ScriptHash]common.PlutusScript{}
	for _, purpose := range purposes {
		hash := purpose.Info.ScriptHash()
		if ps, ok := scripts[hash].(common.PlutusScript); ok {
			ret = append(ret, purpose)
			plutusScripts[hash] = ps
		}
	}
	return ret, plutusScripts
}

func UtxoValidateScriptDataHash(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	redeemers := tx.WitnessSet.Redeemers
	datums := tx.WitnessSet.PlutusData
	supplied := tx.Body.ScriptDataHash
	if len(redeemers) == 0 && len(datums) == 0 {
		if supplied != nil {
			return UnexpectedScriptDataHashError{Supplied: *supplied}
		}
		return nil
	}
	_, plutusScripts := plutusPurposes(
		script.ScriptPurposes(tx, resolver(ls)),
		availableScripts(ls, tx),
	)
	var languages []uint
	for _, ps := range plutusScripts {
		if !slices.Contains(languages, ps.Language()) {
			languages = append(languages, ps.Language())
		}
	}
	slices.Sort(languages)
	expected, err := common.ScriptDataHash(redeemers, datums, ctx.ProtocolParams, languages)
	if err != nil {
		return fmt.Errorf("compute script data hash: %w", err)
	}
	if supplied == nil {
		return MissingScriptDataHashError{Expected: expected}
	}
	if *supplied != expected {
		return PPViewHashesDontMatchError{
			Supplied: *supplied,
			Expected: expected,
		}
	}
	return nil
}

func UtxoValidateSignatures(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	txId := tx.Hash()
	var badKeys [][]byte
	for _, w := range tx.WitnessSet.VkeyWitnesses {
		if len(w.Vkey) != ed25519.PublicKeySize || len(w.Signature) != ed25519.SignatureSize {
			badKeys = append(badKeys, w.Vkey)
			continue
		}
		if _, err := new(edwards25519.Point).SetBytes(w.Vkey); err != nil {
			badKeys = append(badKeys, w.Vkey)
			continue
		}
		if !ed25519.Verify(ed25519.PublicKey(w.Vkey), txId.Bytes(), w.Signature) {
			badKeys = append(badKeys, w.Vkey)
		}
	}
	if len(badKeys) == 0 {
		return nil
	}
	return InvalidWitnessesError{Vkeys: badKeys}
}

// RequiredKeyHashes returns the key hashes that must sign the transaction
func RequiredKeyHashes(ls common.LedgerState, tx *common.Transaction) []common.KeyHash {
	required := map[common.KeyHash]struct{}{}
	addCred := func(cred common.Credential, ok bool) {
		if ok && !cred.IsScript() {
			required[cred.Hash] = struct{}{}
		}
	}
	for _, utxo := range resolveAll(ls, slices.Concat(tx.Body.Inputs, tx.Body.Collateral)) {
		addCred(utxo.Output.Address.PaymentCredential())
	}
	for _, keyHash := range tx.Body.RequiredSigners {
		required[keyHash] = struct{}{}
	}
	for _, withdrawal := range tx.Body.Withdrawals {
		addCred(withdrawal.RewardAccount.StakeCredential())
	}
	for _, cert := range tx.Body.Certificates {
		for _, cred := range common.CertificateWitnessCredentials(cert) {
			addCred(cred, true)
		}
	}
	ret := make([]common.KeyHash, 0, len(required))
	for keyHash := range required {
		ret = append(ret, keyHash)
	}
	return sortHashes(ret)
}

func UtxoValidateRequiredVKeyWitnesses(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	signers := tx.Signers()
	var missing []common.KeyHash
	for _, keyHash := range RequiredKeyHashes(ls, tx) {
		if _, ok := signers[keyHash]; !ok {
			missing = append(missing, keyHash)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return MissingVKeyWitnessesError{KeyHashes: missing}
}

// RequiredScriptHashes returns the hashes of the scripts that guard some part of the transaction
func RequiredScriptHashes(ls common.LedgerState, tx *common.Transaction) []common.ScriptHash {
	required := map[common.ScriptHash]struct{}{}
	for _, purpose := range script.ScriptPurposes(tx, resolver(ls)) {
		required[purpose.Info.ScriptHash()] = struct{}{}
	}
	ret := make([]common.ScriptHash, 0, len(required))
	for hash := range required {
		ret = append(ret, hash)
	}
	return sortHashes(ret)
}

func UtxoValidateScriptWitnesses(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	required := RequiredScriptHashes(ls, tx)
	refScripts := referenceScripts(ls, tx)
	witnessScripts := map[common.ScriptHash]struct{}{}
	for _, s := range tx.WitnessSet.Scripts() {
		witnessScripts[s.Hash()] = struct{}{}
	}
	var missing []common.ScriptHash
	for _, hash := range required {
		_, inWitness := witnessScripts[hash]
		_, inRef := refScripts[hash]
		if !inWitness && !inRef {
			missing = append(missing, hash)
		}
	}
	if len(missing) > 0 {
		return MissingScriptWitnessesError{Hashes: missing}
	}
	var extraneous []common.ScriptHash
	for hash := range witnessScripts {
		if !slices.Contains(required, hash) {
			extraneous = append(extraneous, hash)
		}
	}
	if len(extraneous) > 0 {
		return ExtraneousScriptWitnessesError{Hashes: sortHashes(extraneous)}
	}
	return nil
}

func UtxoValidateNativeScripts(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	scripts := availableScripts(ls, tx)
	signers := tx.Signers()
	for _, hash := range RequiredScriptHashes(ls, tx) {
		var nativeScript common.NativeScript
		switch s := scripts[hash].(type) {
		case common.NativeScript:
			nativeScript = s
		case *common.NativeScript:
			nativeScript = *s
		default:
			continue
		}
		if !nativeScript.Evaluate(tx.Body.ValidityIntervalStart, tx.Body.Ttl, signers) {
			return NativeScriptFailedError{Hash: hash}
		}
	}
	return nil
}

// certView overlays the registrations made by earlier certificates of a transaction on
// top of the ledger state. A nil deposit marks a deregistration
type certView struct {
	ls    common.CertState
	stake map[common.Credential]*common.Coin
	pools map[common.KeyHash]bool
	dreps map[common.Credential]*common.Coin
}

func newCertView(ls common.CertState) *certView {
	return &certView{
		ls:    ls,
		stake: map[common.Credential]*common.Coin{},
		pools: map[common.KeyHash]bool{},
		dreps: map[common.Credential]*common.Coin{},
	}
}

func (v *certView) stakeDeposit(cred common.Credential) (common.Coin, bool) {
	if deposit, ok := v.stake[cred]; ok {
		if deposit == nil {
			return 0, false
		}
		return *deposit, true
	}
	return v.ls.StakeRegistration(cred)
}

func (v *certView) drepDeposit(cred common.Credential) (common.Coin, bool) {
	if deposit, ok := v.dreps[cred]; ok {
		if deposit == nil {
			return 0, false
		}
		return *deposit, true
	}
	return v.ls.DRepRegistration(cred)
}

func (v *certView) poolRegistered(pool common.KeyHash) bool {
	if v.pools[pool] {
		return true
	}
	_, ok := v.ls.PoolRegistration(pool)
	return ok
}

func (v *certView) registerStake(cred common.Credential, deposit common.Coin) {
	v.stake[cred] = &deposit
}

func (v *certView) registerDrep(cred common.Credential, deposit common.Coin) {
	v.dreps[cred] = &deposit
}

func (v *certView) checkStakeRegistration(cred common.Credential) error {
	if _, ok := v.stakeDeposit(cred); ok {
		return StakeAlreadyRegisteredError{Credential: cred}
	}
	return nil
}

// checkStakeDeregistration verifies the credential is registered and that its reward balance
// is withdrawn in full by the same transaction
func (v *certView) checkStakeDeregistration(
	cred common.Credential,
	tx *common.Transaction,
) (common.Coin, error) {
	deposit, ok := v.stakeDeposit(cred)
	if !ok {
		return 0, StakeNotRegisteredError{Credential: cred}
	}
	if _, registeredInTx := v.stake[cred]; !registeredInTx {
		balance, _ := v.ls.RewardBalance(cred)
		var withdrawn common.Coin
		for _, withdrawal := range tx.Body.Withdrawals {
			if stakeCred, ok := withdrawal.RewardAccount.StakeCredential(); ok && stakeCred == cred {
				withdrawn = withdrawal.Amount
			}
		}
		if balance != 0 && withdrawn != balance {
			return 0, StakeNonZeroRewardsError{Credential: cred, Balance: balance}
		}
	}
	return deposit, nil
}

func drepCredential(drep common.Drep) (common.Credential, bool) {
	switch drep.Type {
	case common.DrepTypeAddrKeyHash:
		return common.NewKeyCredential(drep.Credential), true
	case common.DrepTypeScriptHash:
		return common.NewScriptCredential(drep.Credential), true
	}
	return common.Credential{}, false
}

func validateCertificate(
	view *certView,
	pp *common.ProtocolParameters,
	tx *common.Transaction,
	cert common.Certificate,
) error {
	switch c := cert.(type) {
	case *common.StakeRegistrationCertificate:
		if err := view.checkStakeRegistration(c.StakeCredential); err != nil {
			return err
		}
		view.registerStake(c.StakeCredential, common.Coin(pp.KeyDeposit))
	case *common.RegistrationCertificate:
		if err := view.checkStakeRegistration(c.StakeCredential); err != nil {
			return err
		}
		if c.Amount != common.Coin(pp.KeyDeposit) {
			return InvalidCertificateDepositError{
				CertType: c.Type(),
				Supplied: c.Amount,
				Expected: common.Coin(pp.KeyDeposit),
			}
		}
		view.registerStake(c.StakeCredential, c.Amount)
	case *common.StakeDeregistrationCertificate:
		if _, err := view.checkStakeDeregistration(c.StakeCredential, tx); err != nil {
			return err
		}
		view.stake[c.StakeCredential] = nil
	case *common.DeregistrationCertificate:
		deposit, err := view.checkStakeDeregistration(c.StakeCredential, tx)
		if err != nil {
			return err
		}
		if c.Amount != deposit {
			return InvalidCertificateDepositError{
				CertType: c.Type(),
				Supplied: c.Amount,
				Expected: deposit,
			}
		}
		view.stake[c.StakeCredential] = nil
	case *common.StakeDelegationCertificate:
		if _, ok := view.stakeDeposit(c.StakeCredential); !ok {
			return StakeNotRegisteredError{Credential: c.StakeCredential}
		}
		if !view.poolRegistered(c.PoolKeyHash) {
			return DelegateToUnregisteredPoolError{Pool: c.PoolKeyHash}
		}
	case *common.PoolRegistrationCertificate:
		view.pools[c.Operator] = true
	case *common.PoolRetirementCertificate:
		if !view.poolRegistered(c.PoolKeyHash) {
			return PoolNotRegisteredError{Pool: c.PoolKeyHash}
		}
	case *common.VoteDelegationCertificate:
		if _, ok := view.stakeDeposit(c.StakeCredential); !ok {
			return StakeNotRegisteredError{Credential: c.StakeCredential}
		}
		if drepCred, ok := drepCredential(c.Drep); ok {
			if _, registered := view.drepDeposit(drepCred); !registered {
				return DRepNotRegisteredError{Credential: drepCred}
			}
		}
	case *common.RegistrationDrepCertificate:
		if _, ok := view.drepDeposit(c.DrepCredential); ok {
			return DRepAlreadyRegisteredError{Credential: c.DrepCredential}
		}
		if c.Amount != common.Coin(pp.DRepDeposit) {
			return InvalidCertificateDepositError{
				CertType: c.Type(),
				Supplied: c.Amount,
				Expected: common.Coin(pp.DRepDeposit),
			}
		}
		view.registerDrep(c.DrepCredential, c.Amount)
	case *common.DeregistrationDrepCertificate:
		deposit, ok := view.drepDeposit(c.DrepCredential)
		if !ok {
			return DRepNotRegisteredError{Credential: c.DrepCredential}
		}
		if c.Amount != deposit {
			return InvalidCertificateDepositError{
				CertType: c.Type(),
				Supplied: c.Amount,
				Expected: deposit,
			}
		}
		view.dreps[c.DrepCredential] = nil
	}
	return nil
}

func UtxoValidateCertificates(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	view := newCertView(ls)
	for _, cert := range tx.Body.Certificates {
		if err := validateCertificate(view, ctx.ProtocolParams, tx, cert); err != nil {
			return err
		}
	}
	return nil
}

func UtxoValidateWithdrawals(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	for _, withdrawal := range tx.Body.Withdrawals {
		cred, _ := withdrawal.RewardAccount.StakeCredential()
		balance, ok := ls.RewardBalance(cred)
		if !ok {
			return WithdrawalFromUnregisteredRewardAccountError{
				RewardAccount: withdrawal.RewardAccount,
			}
		}
		if withdrawal.Amount != balance {
			return IncorrectWithdrawalAmountError{
				RewardAccount: withdrawal.RewardAccount,
				Supplied:      withdrawal.Amount,
				Balance:       balance,
			}
		}
	}
	return nil
}

func UtxoValidateCollateral(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	if len(tx.WitnessSet.Redeemers) == 0 {
		return nil
	}
	pp := ctx.ProtocolParams
	if len(tx.Body.Collateral) == 0 {
		return NoCollateralInputsError{}
	}
	if uint64(len(tx.Body.Collateral)) > pp.MaxCollateralInputs {
		return TooManyCollateralInputsError{
			Provided: uint(len(tx.Body.Collateral)),
			Max:      uint(pp.MaxCollateralInputs), // #nosec G115
		}
	}
	var balance common.ValueUnbounded
	var scriptLocked []common.TransactionInput
	for _, utxo := range resolveAll(ls, tx.Body.Collateral) {
		if cred, ok := utxo.Output.Address.PaymentCredential(); ok && cred.IsScript() {
			scriptLocked = append(scriptLocked, utxo.Id)
		}
		balance = balance.Add(utxo.Output.Amount.Unbounded())
	}
	if len(scriptLocked) > 0 {
		return ScriptLockedCollateralError{Inputs: scriptLocked}
	}
	if tx.Body.CollateralReturn != nil {
		balance = balance.Sub(tx.Body.CollateralReturn.Amount.Unbounded())
	}
	if !balance.Assets.IsEmpty() {
		return CollateralContainsNonAdaError{Provided: balance}
	}
	required := tx.Body.Fee.Unbounded().
		Scale(common.NewFractional(int64(pp.CollateralPercentage), 100)). // #nosec G115
		Round(common.RoundCeil)
	if balance.Coin.Cmp(required) < 0 {
		return InsufficientCollateralError{
			Provided: balance.Coin,
			Required: required,
		}
	}
	if tx.Body.TotalCollateral != nil && balance.Coin.Cmp(tx.Body.TotalCollateral.Unbounded()) != 0 {
		return IncorrectTotalCollateralFieldError{
			Provided: balance.Coin,
			Declared: *tx.Body.TotalCollateral,
		}
	}
	return nil
}

func UtxoValidateExUnitsTooBigUtxo(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	total, err := tx.WitnessSet.Redeemers.TotalExUnits()
	if err != nil {
		return InvalidExUnitsError{Err: err}
	}
	maxUnits := ctx.ProtocolParams.MaxTxExUnits
	if total.Memory <= maxUnits.Memory && total.Steps <= maxUnits.Steps {
		return nil
	}
	return ExUnitsTooBigUtxoError{
		Total: total,
		Max:   maxUnits,
	}
}

func UtxoValidateRedeemerPointers(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	purposes, _ := plutusPurposes(
		script.ScriptPurposes(tx, resolver(ls)),
		availableScripts(ls, tx),
	)
	var extra []ScriptPurpose
	for _, redeemer := range tx.WitnessSet.Redeemers {
		found := slices.ContainsFunc(purposes, func(p script.Purpose) bool {
			return p.Tag == redeemer.Tag && p.Index == redeemer.Index
		})
		if !found {
			extra = append(extra, ScriptPurpose{Tag: redeemer.Tag, Index: redeemer.Index})
		}
	}
	if len(extra) > 0 {
		return ExtraRedeemersError{Purposes: extra}
	}
	var missing []ScriptPurpose
	for _, purpose := range purposes {
		if _, ok := tx.WitnessSet.Redeemers.Find(purpose.Tag, purpose.Index); !ok {
			missing = append(missing, ScriptPurpose{Tag: purpose.Tag, Index: purpose.Index})
		}
	}
	if len(missing) > 0 {
		return MissingRedeemersError{Purposes: missing}
	}
	return nil
}

// UtxoValidatePlutusScripts runs every Plutus script with its redeemer. A transaction flagged
// as invalid must contain a failing script, and one flagged as valid must have all scripts pass
func UtxoValidatePlutusScripts(
	ctx *common.Context,
	ls common.LedgerState,
	tx *common.Transaction,
) error {
	redeemers := tx.WitnessSet.Redeemers
	if len(redeemers) == 0 {
		if !tx.Valid {
			return ValidityFlagMismatchError{Supplied: false, Evaluated: true}
		}
		return nil
	}
	if ctx.Evaluator == nil {
		return ErrNoScriptEvaluator
	}
	txInfo := script.NewTxInfo(tx, resolver(ls))
	purposes, plutusScripts := plutusPurposes(txInfo.Purposes, availableScripts(ls, tx))
	for _, purpose := range purposes {
		redeemer, ok := redeemers.Find(purpose.Tag, purpose.Index)
		if !ok {
			continue
		}
		hash := purpose.Info.ScriptHash()
		plutusScript := plutusScripts[hash]
		args, err := txInfo.Arguments(plutusScript.Language(), purpose, redeemer)
		if err != nil {
			if spending, ok := purpose.Info.(script.ScriptInfoSpending); ok &&
				errors.Is(err, script.ErrMissingDatum) {
				return MissingDatumError{Input: spending.Input.Id}
			}
			return err
		}
		result, err := ctx.Evaluator.EvaluateScript(plutusScript, args, redeemer.ExUnits)
		if err != nil {
			if !tx.Valid {
				return nil
			}
			logs := result.Logs
			var evalErr *common.ScriptEvaluationError
			if errors.As(err, &evalErr) && len(evalErr.Logs) > 0 {
				logs = evalErr.Logs
			}
			return PlutusScriptFailedError{
				ScriptHash: hash,
				Purpose:    ScriptPurpose{Tag: purpose.Tag, Index: purpose.Index},
				Logs:       logs,
				Err:        err,
			}
		}
	}
	if !tx.Valid {
		return ValidityFlagMismatchError{Supplied: false, Evaluated: true}
	}
	return nil
}
