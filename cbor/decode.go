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

package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

// Nesting limit for untrusted input
const maxNestedLevels = 256

var decMode = sync.OnceValues(func() (_cbor.DecMode, error) {
	return _cbor.DecOptions{
		ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   maxNestedLevels,
	}.DecMode()
})

// Decode decodes a single CBOR item into dest and returns the number of bytes consumed
func Decode(dataBytes []byte, dest any) (int, error) {
	dm, err := decMode()
	if err != nil {
		return 0, err
	}
	dec := dm.NewDecoder(bytes.NewReader(dataBytes))
	err = dec.Decode(dest)
	return dec.NumBytesRead(), err
}

// DecodeEmbedded unwraps a tag 24 item and returns the inner CBOR
func DecodeEmbedded(cborData []byte) ([]byte, error) {
	var tag Tag
	if _, err := Decode(cborData, &tag); err != nil {
		return nil, err
	}
	if tag.Number != CborTagEmbedded {
		return nil, fmt.Errorf(
			"expected tag %d, found %d",
			CborTagEmbedded,
			tag.Number,
		)
	}
	inner, ok := tag.Content.([]byte)
	if !ok {
		return nil, fmt.Errorf("embedded tag holds %T, not bytes", tag.Content)
	}
	return inner, nil
}

// DecodeIdFromList returns the leading unsigned integer of a CBOR array.
// Certificates and other tagged unions use it to pick a concrete type.
func DecodeIdFromList(cborData []byte) (int, error) {
	if !IsArray(cborData) {
		return 0, errors.New("not a CBOR array")
	}
	var items []RawMessage
	if _, err := Decode(cborData, &items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, errors.New("empty CBOR array has no type id")
	}
	var id uint64
	if _, err := Decode(items[0], &id); err != nil {
		return 0, fmt.Errorf("type id is not an unsigned integer: %w", err)
	}
	if id > math.MaxInt {
		return 0, fmt.Errorf("type id %d out of range", id)
	}
	return int(id), nil
}

// ListLength returns the number of items in a CBOR array
func ListLength(cborData []byte) (int, error) {
	if !IsArray(cborData) {
		return 0, errors.New("not a CBOR array")
	}
	var items []RawMessage
	if _, err := Decode(cborData, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// plainTypes maps a struct type to a copy without methods, so decoding
// it skips any UnmarshalCBOR defined on the original
var plainTypes sync.Map

func plainType(t reflect.Type) reflect.Type {
	if cached, ok := plainTypes.Load(t); ok {
		return cached.(reflect.Type)
	}
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		// embedded DecodeStoreCbor would bring its unexported state along
		if !f.IsExported() || f.Name == "DecodeStoreCbor" {
			continue
		}
		fields = append(fields, f)
	}
	plain := reflect.StructOf(fields)
	actual, _ := plainTypes.LoadOrStore(t, plain)
	return actual.(reflect.Type)
}

// DecodeGeneric decodes into a struct pointer while bypassing its own
// UnmarshalCBOR, for use from inside that UnmarshalCBOR
func DecodeGeneric(cborData []byte, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	tmp := reflect.New(plainType(v.Elem().Type()))
	if _, err := Decode(cborData, tmp.Interface()); err != nil {
		return err
	}
	return copier.Copy(dest, tmp.Interface())
}
