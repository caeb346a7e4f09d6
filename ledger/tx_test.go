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

package ledger_test

import (
	"testing"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/internal/test"
	test_ledger "github.com/blinklabs-io/utxoledger/internal/test/ledger"
	"github.com/blinklabs-io/utxoledger/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T) *common.Transaction {
	alice := test_ledger.NewKey(1)
	bob := test_ledger.NewKey(2)
	tx := &common.Transaction{
		Body: common.TransactionBody{
			Inputs: []common.TransactionInput{
				common.NewTransactionInput(test_ledger.TxId(0xa1), 0),
			},
			Outputs: []common.TransactionOutput{
				{
					Address: bob.Address(common.AddressNetworkTestnet),
					Amount:  common.NewValue(3_000_000, common.MultiAsset{}),
				},
			},
			Fee: 200_000,
		},
		Valid: true,
	}
	test_ledger.Sign(tx, alice)
	return tx
}

func TestNewTransactionFromCborArray(t *testing.T) {
	tx := testTransaction(t)
	txCbor, err := cbor.Encode(tx)
	require.NoError(t, err)
	decoded, err := ledger.NewTransactionFromCbor(txCbor)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), decoded.Hash())
	assert.True(t, decoded.Valid)
	assert.Nil(t, decoded.AuxiliaryData)
	assert.Len(t, decoded.WitnessSet.VkeyWitnesses, 1)
	size, err := decoded.Size()
	require.NoError(t, err)
	assert.Len(t, txCbor, size)
}

func TestNewTransactionFromCborPreAlonzo(t *testing.T) {
	tx := testTransaction(t)
	txCbor, err := cbor.Encode([]any{tx.Body, tx.WitnessSet, nil})
	require.NoError(t, err)
	decoded, err := ledger.NewTransactionFromCbor(txCbor)
	require.NoError(t, err)
	assert.True(t, decoded.Valid)
	assert.Equal(t, tx.Hash(), decoded.Hash())
}

func TestNewTransactionFromCborKeyed(t *testing.T) {
	tx := testTransaction(t)
	txCbor, err := cbor.Encode(map[uint]any{
		0: tx.Body,
		1: tx.WitnessSet,
		2: false,
		3: nil,
	})
	require.NoError(t, err)
	require.True(t, cbor.IsMap(txCbor))
	decoded, err := ledger.NewTransactionFromCbor(txCbor)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), decoded.Hash())
	assert.False(t, decoded.Valid)
	// Re-encoding uses the array layout
	reencoded, err := cbor.Encode(decoded)
	require.NoError(t, err)
	assert.True(t, cbor.IsArray(reencoded))
}

func TestNewTransactionFromCborFailure(t *testing.T) {
	testDefs := []struct {
		name       string
		cborHex    string
		strategies []string
		fallback   string
	}{
		{
			name:       "ArrayWithBadItems",
			cborHex:    "840102f5f6",
			strategies: []string{"array", "keyed"},
			fallback:   "not a CBOR map",
		},
		{
			name:       "MapWithoutBody",
			cborHex:    "a10201",
			strategies: []string{"keyed", "array"},
			fallback:   "not a CBOR array",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := ledger.NewTransactionFromCbor(test.DecodeHexString(testDef.cborHex))
			var decodeErr ledger.TransactionDecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, testDef.strategies, decodeErr.Strategies)
			require.Len(t, decodeErr.Causes, 2)
			// The fallback only records the layout mismatch
			assert.EqualError(t, decodeErr.Causes[1], testDef.fallback)
		})
	}
}

func TestNewTransactionFromCborUnexpectedType(t *testing.T) {
	_, err := ledger.NewTransactionFromCbor(nil)
	require.Error(t, err)
	// Unsigned integer
	_, err = ledger.NewTransactionFromCbor([]byte{0x01})
	require.Error(t, err)
	assert.NotErrorAs(t, err, &ledger.TransactionDecodeError{})
}
