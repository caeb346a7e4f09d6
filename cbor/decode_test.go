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

package cbor_test

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBytesRead(t *testing.T) {
	cborData, err := hex.DecodeString("81018102")
	require.NoError(t, err)
	var dest []uint64
	bytesRead, err := cbor.Decode(cborData, &dest)
	require.NoError(t, err)
	assert.Equal(t, 2, bytesRead)
	assert.Equal(t, []uint64{1}, dest)
}

func TestListLength(t *testing.T) {
	testDefs := []struct {
		cborHex string
		length  int
	}{
		{cborHex: "80", length: 0},
		{cborHex: "8101", length: 1},
		{cborHex: "820103", length: 2},
		// 24 items, which needs the long form header
		{
			cborHex: "9818" + "010101010101010101010101010101010101010101010101",
			length:  24,
		},
	}
	for _, testDef := range testDefs {
		t.Run(fmt.Sprintf("len%d", testDef.length), func(t *testing.T) {
			cborData, err := hex.DecodeString(testDef.cborHex)
			require.NoError(t, err)
			length, err := cbor.ListLength(cborData)
			require.NoError(t, err)
			assert.Equal(t, testDef.length, length)
		})
	}
	_, err := cbor.ListLength(nil)
	assert.Error(t, err)
}

func TestDecodeIdFromList(t *testing.T) {
	// [7, h'00']
	id, err := cbor.DecodeIdFromList([]byte{0x82, 0x07, 0x41, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	// [24, 1] uses the two byte uint form
	id, err = cbor.DecodeIdFromList([]byte{0x82, 0x18, 0x18, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 24, id)
	// []
	_, err = cbor.DecodeIdFromList([]byte{0x80})
	assert.Error(t, err)
	// {0: 1} is not a list
	_, err = cbor.DecodeIdFromList([]byte{0xa1, 0x00, 0x01})
	assert.Error(t, err)
}

type storedThing struct {
	cbor.DecodeStoreCbor
	A uint64 `cbor:"0,keyasint"`
	B string `cbor:"1,keyasint,omitempty"`
}

func (s *storedThing) UnmarshalCBOR(data []byte) error {
	if err := cbor.DecodeGeneric(data, s); err != nil {
		return err
	}
	s.SetCbor(data)
	return nil
}

func TestDecodeGenericStoresCbor(t *testing.T) {
	// Non-canonical length encoding for the value 5 is preserved as-is
	cborData := []byte{0xa1, 0x00, 0x18, 0x05}
	var s storedThing
	_, err := cbor.Decode(cborData, &s)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), s.A)
	assert.Equal(t, cborData, s.Cbor())
}

func TestDecodeUnknownFieldRejected(t *testing.T) {
	// {0: 1, 9: 2}
	var s storedThing
	_, err := cbor.Decode([]byte{0xa2, 0x00, 0x01, 0x09, 0x02}, &s)
	assert.Error(t, err)
}

func TestEmbedded(t *testing.T) {
	cborData, err := cbor.EncodeEmbedded(uint64(42))
	require.NoError(t, err)
	assert.Equal(t, "d81842182a", hex.EncodeToString(cborData))
	inner, err := cbor.DecodeEmbedded(cborData)
	require.NoError(t, err)
	var v uint64
	_, err = cbor.Decode(inner, &v)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestMajorType(t *testing.T) {
	assert.True(t, cbor.IsArray([]byte{0x84}))
	assert.True(t, cbor.IsArray([]byte{0x9f}))
	assert.True(t, cbor.IsMap([]byte{0xa4}))
	assert.False(t, cbor.IsMap(nil))
	assert.False(t, cbor.IsArray([]byte{0x01}))
}

func TestByteStringMapKey(t *testing.T) {
	src := map[cbor.ByteString]uint64{
		cbor.NewByteString([]byte{0x02}): 2,
		cbor.NewByteString([]byte{0x01}): 1,
	}
	cborData, err := cbor.Encode(src)
	require.NoError(t, err)
	// Keys are sorted bytewise in the deterministic encoding
	assert.Equal(t, "a2410101410202", hex.EncodeToString(cborData))
	var dest map[cbor.ByteString]uint64
	_, err = cbor.Decode(cborData, &dest)
	require.NoError(t, err)
	assert.Equal(t, src, dest)
}
