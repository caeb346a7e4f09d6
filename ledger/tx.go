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

// Package ledger is the codec boundary for transactions submitted as raw CBOR
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// Compatibility aliases
type (
	Transaction       = common.Transaction
	TransactionBody   = common.TransactionBody
	TransactionInput  = common.TransactionInput
	TransactionOutput = common.TransactionOutput
	Utxo              = common.Utxo
)

// DecodeStrategy is one supported top-level transaction layout
type DecodeStrategy struct {
	Name   string
	Decode func([]byte) (*Transaction, error)
}

// DecodeStrategyArray decodes [body, witnesses, isValid, aux] and the pre-Alonzo
// [body, witnesses, aux]
var DecodeStrategyArray = DecodeStrategy{
	Name:   "array",
	Decode: decodeArrayTransaction,
}

// DecodeStrategyKeyed decodes {0: body, 1: witnesses, 2: isValid, 3: aux}
var DecodeStrategyKeyed = DecodeStrategy{
	Name:   "keyed",
	Decode: decodeKeyedTransaction,
}

// Strategy order by the CBOR major type of the first byte. The second entry is the single
// fallback. Each strategy checks the major type itself, so today the fallback never
// succeeds and only adds its cause to TransactionDecodeError. It is the extension point for
// a layout that shares a major type with another one
var decodeStrategies = map[uint8][2]DecodeStrategy{
	cbor.CborTypeArray: {DecodeStrategyArray, DecodeStrategyKeyed},
	cbor.CborTypeMap:   {DecodeStrategyKeyed, DecodeStrategyArray},
}

type TransactionDecodeError struct {
	Strategies []string
	Causes     []error
}

func (e TransactionDecodeError) Error() string {
	msg := "failed to decode transaction"
	for idx, cause := range e.Causes {
		msg = fmt.Sprintf("%s; %s: %s", msg, e.Strategies[idx], cause)
	}
	return msg
}

func (e TransactionDecodeError) Unwrap() []error {
	return e.Causes
}

// NewTransactionFromCbor decodes a transaction, picking the layout from the first byte and
// falling back to the other layout once
func NewTransactionFromCbor(data []byte) (*Transaction, error) {
	majorType, ok := cbor.MajorType(data)
	if !ok {
		return nil, errors.New("empty transaction CBOR")
	}
	strategies, ok := decodeStrategies[majorType]
	if !ok {
		return nil, fmt.Errorf(
			"unexpected CBOR major type for transaction: %d",
			majorType>>5,
		)
	}
	var decodeErr TransactionDecodeError
	for _, strategy := range strategies {
		tx, err := strategy.Decode(data)
		if err == nil {
			return tx, nil
		}
		decodeErr.Strategies = append(decodeErr.Strategies, strategy.Name)
		decodeErr.Causes = append(decodeErr.Causes, err)
	}
	return nil, decodeErr
}

func NewTransactionBodyFromCbor(data []byte) (*TransactionBody, error) {
	var body TransactionBody
	if _, err := cbor.Decode(data, &body); err != nil {
		return nil, fmt.Errorf("decode transaction body: %w", err)
	}
	return &body, nil
}

func NewTransactionOutputFromCbor(data []byte) (*TransactionOutput, error) {
	var output TransactionOutput
	if _, err := cbor.Decode(data, &output); err != nil {
		return nil, fmt.Errorf("decode transaction output: %w", err)
	}
	return &output, nil
}

func decodeArrayTransaction(data []byte) (*Transaction, error) {
	if !cbor.IsArray(data) {
		return nil, errors.New("not a CBOR array")
	}
	var tx Transaction
	if _, err := cbor.Decode(data, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

type keyedTransaction struct {
	Body       cbor.RawMessage `cbor:"0,keyasint"`
	WitnessSet cbor.RawMessage `cbor:"1,keyasint"`
	Valid      *bool           `cbor:"2,keyasint,omitempty"`
	AuxData    cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

var cborNull = []byte{0xf6}

// The re-encoded transaction uses the array layout, while the body keeps its original bytes
// and therefore its ID
func decodeKeyedTransaction(data []byte) (*Transaction, error) {
	if !cbor.IsMap(data) {
		return nil, errors.New("not a CBOR map")
	}
	var tmp keyedTransaction
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return nil, err
	}
	if len(tmp.Body) == 0 {
		return nil, errors.New("missing transaction body")
	}
	if len(tmp.WitnessSet) == 0 {
		return nil, errors.New("missing witness set")
	}
	tx := &Transaction{Valid: true}
	if tmp.Valid != nil {
		tx.Valid = *tmp.Valid
	}
	if _, err := cbor.Decode(tmp.Body, &tx.Body); err != nil {
		return nil, fmt.Errorf("decode transaction body: %w", err)
	}
	if _, err := cbor.Decode(tmp.WitnessSet, &tx.WitnessSet); err != nil {
		return nil, fmt.Errorf("decode witness set: %w", err)
	}
	if len(tmp.AuxData) > 0 && !bytes.Equal(tmp.AuxData, cborNull) {
		tx.AuxiliaryData = slices.Clone(tmp.AuxData)
	}
	return tx, nil
}
