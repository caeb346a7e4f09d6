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

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/blinklabs-io/utxoledger/cbor"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

type TransactionInput struct {
	cbor.StructAsArray
	TxId        TransactionId
	OutputIndex uint32
}

func NewTransactionInput(txId TransactionId, outputIndex uint32) TransactionInput {
	return TransactionInput{TxId: txId, OutputIndex: outputIndex}
}

func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId.String(), i.OutputIndex)
}

// Compare orders inputs by transaction ID bytes and then output index
func (i TransactionInput) Compare(o TransactionInput) int {
	if c := bytes.Compare(i.TxId[:], o.TxId[:]); c != 0 {
		return c
	}
	return cmp.Compare(i.OutputIndex, o.OutputIndex)
}

func (i TransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: i.OutputIndex,
	}
}

// Utxorpc returns the output in utxorpc form, with native assets grouped by policy
func (o TransactionOutput) Utxorpc() (*utxorpc.TxOutput, error) {
	ret := &utxorpc.TxOutput{
		Address: o.Address.Bytes(),
		Coin:    uint64(o.Amount.Coin),
	}
	var current *utxorpc.Multiasset
	for _, entry := range o.Amount.Assets.Entries() {
		policy := entry.Policy.Bytes()
		if current == nil || !bytes.Equal(current.PolicyId, policy) {
			current = &utxorpc.Multiasset{PolicyId: policy}
			ret.Assets = append(ret.Assets, current)
		}
		current.Assets = append(
			current.Assets,
			&utxorpc.Asset{
				Name:       []byte(entry.Name),
				OutputCoin: uint64(entry.Amount),
			},
		)
	}
	switch {
	case o.Datum != nil:
		datumCbor, err := o.Datum.MarshalCBOR()
		if err != nil {
			return nil, fmt.Errorf("encode inline datum: %w", err)
		}
		ret.Datum = &utxorpc.Datum{
			Hash:         Blake2b256Hash(datumCbor).Bytes(),
			OriginalCbor: datumCbor,
		}
	case o.DatumHash != nil:
		ret.Datum = &utxorpc.Datum{Hash: o.DatumHash.Bytes()}
	}
	return ret, nil
}

// SortInputs returns a sorted copy of the inputs
func SortInputs(inputs []TransactionInput) []TransactionInput {
	ret := slices.Clone(inputs)
	slices.SortFunc(ret, TransactionInput.Compare)
	return ret
}

const (
	DatumOptionTypeHash   = 0
	DatumOptionTypeInline = 1
)

type TransactionOutput struct {
	cbor.DecodeStoreCbor
	Address   Address
	Amount    Value
	DatumHash *Blake2b256
	Datum     *Datum
	ScriptRef Script
}

type datumOption struct {
	hash  *Blake2b256
	datum *Datum
}

func (d datumOption) MarshalCBOR() ([]byte, error) {
	if d.datum != nil {
		datumCbor, err := d.datum.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		return cbor.Encode(
			[]any{
				DatumOptionTypeInline,
				cbor.Tag{Number: cbor.CborTagEmbedded, Content: datumCbor},
			},
		)
	}
	return cbor.Encode([]any{DatumOptionTypeHash, d.hash})
}

func (d *datumOption) UnmarshalCBOR(data []byte) error {
	var tmp []cbor.RawMessage
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	if len(tmp) != 2 {
		return fmt.Errorf("invalid datum option: expected 2 items, got %d", len(tmp))
	}
	var optType uint
	if _, err := cbor.Decode(tmp[0], &optType); err != nil {
		return err
	}
	switch optType {
	case DatumOptionTypeHash:
		var hash Blake2b256
		if _, err := cbor.Decode(tmp[1], &hash); err != nil {
			return err
		}
		d.hash = &hash
	case DatumOptionTypeInline:
		inner, err := cbor.DecodeEmbedded(tmp[1])
		if err != nil {
			return err
		}
		var datum Datum
		if _, err := cbor.Decode(inner, &datum); err != nil {
			return err
		}
		d.datum = &datum
	default:
		return fmt.Errorf("unknown datum option type: %d", optType)
	}
	return nil
}

type transactionOutputCbor struct {
	Address     Address      `cbor:"0,keyasint"`
	Amount      Value        `cbor:"1,keyasint"`
	DatumOption *datumOption `cbor:"2,keyasint,omitempty"`
	ScriptRef   *ScriptRef   `cbor:"3,keyasint,omitempty"`
}

func (o *TransactionOutput) UnmarshalCBOR(data []byte) error {
	var ret TransactionOutput
	if cbor.IsArray(data) {
		// Legacy layout: [address, amount, datum_hash?]
		var tmp []cbor.RawMessage
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return err
		}
		if len(tmp) < 2 || len(tmp) > 3 {
			return fmt.Errorf("invalid transaction output: unexpected item count %d", len(tmp))
		}
		if _, err := cbor.Decode(tmp[0], &ret.Address); err != nil {
			return err
		}
		if _, err := cbor.Decode(tmp[1], &ret.Amount); err != nil {
			return err
		}
		if len(tmp) == 3 {
			var hash Blake2b256
			if _, err := cbor.Decode(tmp[2], &hash); err != nil {
				return err
			}
			ret.DatumHash = &hash
		}
	} else {
		var tmp transactionOutputCbor
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return err
		}
		ret.Address = tmp.Address
		ret.Amount = tmp.Amount
		if tmp.DatumOption != nil {
			ret.DatumHash = tmp.DatumOption.hash
			ret.Datum = tmp.DatumOption.datum
		}
		if tmp.ScriptRef != nil {
			ret.ScriptRef = tmp.ScriptRef.Script
		}
	}
	*o = ret
	o.SetCbor(data)
	return nil
}

func (o TransactionOutput) MarshalCBOR() ([]byte, error) {
	if o.Cbor() != nil {
		return o.Cbor(), nil
	}
	tmp := transactionOutputCbor{
		Address: o.Address,
		Amount:  o.Amount,
	}
	switch {
	case o.Datum != nil:
		tmp.DatumOption = &datumOption{datum: o.Datum}
	case o.DatumHash != nil:
		tmp.DatumOption = &datumOption{hash: o.DatumHash}
	}
	if o.ScriptRef != nil {
		tmp.ScriptRef = &ScriptRef{Script: o.ScriptRef}
	}
	return cbor.Encode(&tmp)
}

// Size returns the encoded size of the output in bytes
func (o TransactionOutput) Size() int {
	data, err := o.MarshalCBOR()
	if err != nil {
		return 0
	}
	return len(data)
}

type Utxo struct {
	Id     TransactionInput
	Output TransactionOutput
}

// Utxorpc returns the UTXO as a utxorpc input carrying its resolved output
func (u Utxo) Utxorpc() (*utxorpc.TxInput, error) {
	output, err := u.Output.Utxorpc()
	if err != nil {
		return nil, err
	}
	ret := u.Id.Utxorpc()
	ret.AsOutput = output
	return ret, nil
}

type Withdrawal struct {
	RewardAccount Address
	Amount        Coin
}

type TransactionBody struct {
	cbor.DecodeStoreCbor
	Inputs                []TransactionInput
	Outputs               []TransactionOutput
	Fee                   Coin
	Ttl                   *uint64
	Certificates          []Certificate
	Withdrawals           []Withdrawal
	AuxDataHash           *Blake2b256
	ValidityIntervalStart *uint64
	Mint                  MultiAssetUnbounded
	ScriptDataHash        *Blake2b256
	Collateral            []TransactionInput
	RequiredSigners       []KeyHash
	NetworkId             *uint8
	CollateralReturn      *TransactionOutput
	TotalCollateral       *Coin
	ReferenceInputs       []TransactionInput
}

type transactionBodyCbor struct {
	Inputs                []TransactionInput       `cbor:"0,keyasint"`
	Outputs               []TransactionOutput      `cbor:"1,keyasint"`
	Fee                   Coin                     `cbor:"2,keyasint"`
	Ttl                   *uint64                  `cbor:"3,keyasint,omitempty"`
	Certificates          Certificates             `cbor:"4,keyasint,omitempty"`
	Withdrawals           map[cbor.ByteString]Coin `cbor:"5,keyasint,omitempty"`
	AuxDataHash           *Blake2b256              `cbor:"7,keyasint,omitempty"`
	ValidityIntervalStart *uint64                  `cbor:"8,keyasint,omitempty"`
	Mint                  *MultiAssetUnbounded     `cbor:"9,keyasint,omitempty"`
	ScriptDataHash        *Blake2b256              `cbor:"11,keyasint,omitempty"`
	Collateral            []TransactionInput       `cbor:"13,keyasint,omitempty"`
	RequiredSigners       []KeyHash                `cbor:"14,keyasint,omitempty"`
	NetworkId             *uint8                   `cbor:"15,keyasint,omitempty"`
	CollateralReturn      *TransactionOutput       `cbor:"16,keyasint,omitempty"`
	TotalCollateral       *Coin                    `cbor:"17,keyasint,omitempty"`
	ReferenceInputs       []TransactionInput       `cbor:"18,keyasint,omitempty"`
}

func (b *TransactionBody) UnmarshalCBOR(data []byte) error {
	var tmp transactionBodyCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := TransactionBody{
		Inputs:                tmp.Inputs,
		Outputs:               tmp.Outputs,
		Fee:                   tmp.Fee,
		Ttl:                   tmp.Ttl,
		Certificates:          tmp.Certificates,
		AuxDataHash:           tmp.AuxDataHash,
		ValidityIntervalStart: tmp.ValidityIntervalStart,
		ScriptDataHash:        tmp.ScriptDataHash,
		Collateral:            tmp.Collateral,
		RequiredSigners:       tmp.RequiredSigners,
		NetworkId:             tmp.NetworkId,
		CollateralReturn:      tmp.CollateralReturn,
		TotalCollateral:       tmp.TotalCollateral,
		ReferenceInputs:       tmp.ReferenceInputs,
	}
	if tmp.Mint != nil {
		ret.Mint = *tmp.Mint
	}
	for addrKey, amount := range tmp.Withdrawals {
		addr, err := NewAddressFromBytes(addrKey.Bytes())
		if err != nil {
			return fmt.Errorf("invalid withdrawal address: %w", err)
		}
		if !addr.IsReward() {
			return fmt.Errorf("withdrawal address is not a reward address: %s", addr.String())
		}
		ret.Withdrawals = append(ret.Withdrawals, Withdrawal{RewardAccount: addr, Amount: amount})
	}
	slices.SortFunc(ret.Withdrawals, func(a, b Withdrawal) int {
		return bytes.Compare(a.RewardAccount.Bytes(), b.RewardAccount.Bytes())
	})
	*b = ret
	b.SetCbor(data)
	return nil
}

func (b TransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	tmp := transactionBodyCbor{
		Inputs:                b.Inputs,
		Outputs:               b.Outputs,
		Fee:                   b.Fee,
		Ttl:                   b.Ttl,
		Certificates:          b.Certificates,
		AuxDataHash:           b.AuxDataHash,
		ValidityIntervalStart: b.ValidityIntervalStart,
		ScriptDataHash:        b.ScriptDataHash,
		Collateral:            b.Collateral,
		RequiredSigners:       b.RequiredSigners,
		NetworkId:             b.NetworkId,
		CollateralReturn:      b.CollateralReturn,
		TotalCollateral:       b.TotalCollateral,
		ReferenceInputs:       b.ReferenceInputs,
	}
	if tmp.Inputs == nil {
		tmp.Inputs = []TransactionInput{}
	}
	if tmp.Outputs == nil {
		tmp.Outputs = []TransactionOutput{}
	}
	if !b.Mint.IsEmpty() {
		tmp.Mint = &b.Mint
	}
	if len(b.Withdrawals) > 0 {
		tmp.Withdrawals = make(map[cbor.ByteString]Coin, len(b.Withdrawals))
		for _, w := range b.Withdrawals {
			tmp.Withdrawals[cbor.NewByteString(w.RewardAccount.Bytes())] = w.Amount
		}
	}
	return cbor.Encode(&tmp)
}

// Id returns the transaction ID, which is the hash of the body as it was encoded
func (b TransactionBody) Id() (TransactionId, error) {
	data, err := b.MarshalCBOR()
	if err != nil {
		return TransactionId{}, fmt.Errorf("encode transaction body: %w", err)
	}
	return Blake2b256Hash(data), nil
}

// Hash is Id without the error, for logging and for bodies known to encode. A body that
// cannot be encoded hashes to the zero ID
func (b TransactionBody) Hash() TransactionId {
	id, _ := b.Id()
	return id
}

// Transaction is a body plus its witnesses, the phase-2 validity flag and optional
// auxiliary data
type Transaction struct {
	cbor.DecodeStoreCbor
	Body          TransactionBody
	WitnessSet    WitnessSet
	Valid         bool
	AuxiliaryData cbor.RawMessage
}

var cborNull = []byte{0xf6}

// UnmarshalCBOR decodes the array layout. Pre-Alonzo transactions have no validity flag
// and are treated as valid
func (t *Transaction) UnmarshalCBOR(data []byte) error {
	var tmp []cbor.RawMessage
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := Transaction{Valid: true}
	var auxData cbor.RawMessage
	switch len(tmp) {
	case 3:
		auxData = tmp[2]
	case 4:
		if _, err := cbor.Decode(tmp[2], &ret.Valid); err != nil {
			return fmt.Errorf("decode validity flag: %w", err)
		}
		auxData = tmp[3]
	default:
		return fmt.Errorf("invalid transaction: expected 3 or 4 items, got %d", len(tmp))
	}
	if _, err := cbor.Decode(tmp[0], &ret.Body); err != nil {
		return fmt.Errorf("decode transaction body: %w", err)
	}
	if _, err := cbor.Decode(tmp[1], &ret.WitnessSet); err != nil {
		return fmt.Errorf("decode witness set: %w", err)
	}
	if !bytes.Equal(auxData, cborNull) {
		ret.AuxiliaryData = slices.Clone(auxData)
	}
	*t = ret
	t.SetCbor(data)
	return nil
}

func (t Transaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	auxData := cbor.RawMessage(cborNull)
	if len(t.AuxiliaryData) > 0 {
		auxData = t.AuxiliaryData
	}
	return cbor.Encode([]any{t.Body, t.WitnessSet, t.Valid, auxData})
}

func (t *Transaction) Id() (TransactionId, error) {
	return t.Body.Id()
}

func (t *Transaction) Hash() TransactionId {
	return t.Body.Hash()
}

// Size returns the encoded size of the full transaction in bytes
func (t *Transaction) Size() (int, error) {
	data, err := t.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// AuxDataHash returns the hash of the auxiliary data, if present
func (t *Transaction) AuxDataHash() *Blake2b256 {
	if len(t.AuxiliaryData) == 0 {
		return nil
	}
	hash := Blake2b256Hash(t.AuxiliaryData)
	return &hash
}

// Consumed returns the inputs removed from the UTXO set when the transaction is applied
func (t *Transaction) Consumed() []TransactionInput {
	if !t.Valid {
		return t.Body.Collateral
	}
	return t.Body.Inputs
}

// Produced returns the outputs added to the UTXO set when the transaction is applied. A
// transaction that failed phase-2 validation only produces its collateral return, which is
// indexed after the regular outputs
func (t *Transaction) Produced() ([]Utxo, error) {
	txId, err := t.Id()
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		if t.Body.CollateralReturn == nil {
			return nil, nil
		}
		return []Utxo{
			{
				Id:     NewTransactionInput(txId, uint32(len(t.Body.Outputs))), // #nosec G115
				Output: *t.Body.CollateralReturn,
			},
		}, nil
	}
	ret := make([]Utxo, 0, len(t.Body.Outputs))
	for idx, output := range t.Body.Outputs {
		ret = append(
			ret,
			Utxo{
				Id:     NewTransactionInput(txId, uint32(idx)), // #nosec G115
				Output: output,
			},
		)
	}
	return ret, nil
}

// Signers returns the key hashes of every vkey witness
func (t *Transaction) Signers() map[KeyHash]struct{} {
	ret := make(map[KeyHash]struct{}, len(t.WitnessSet.VkeyWitnesses))
	for _, w := range t.WitnessSet.VkeyWitnesses {
		ret[w.KeyHash()] = struct{}{}
	}
	return ret
}
