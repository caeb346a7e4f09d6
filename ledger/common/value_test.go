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

package common_test

import (
	"testing"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPolicyA = common.NewBlake2b224([]byte{0x01})
	testPolicyB = common.NewBlake2b224([]byte{0x02})
)

func TestAssetMapCanonicalOrder(t *testing.T) {
	m := common.NewAssetMap(
		common.AssetEntry[common.Coin]{Policy: testPolicyB, Name: "b", Amount: 1},
		common.AssetEntry[common.Coin]{Policy: testPolicyA, Name: "z", Amount: 2},
		common.AssetEntry[common.Coin]{Policy: testPolicyA, Name: "a", Amount: 3},
		common.AssetEntry[common.Coin]{Policy: testPolicyB, Name: "zero", Amount: 0},
	)
	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, testPolicyA, entries[0].Policy)
	assert.Equal(t, common.AssetName("a"), entries[0].Name)
	assert.Equal(t, common.AssetName("z"), entries[1].Name)
	assert.Equal(t, testPolicyB, entries[2].Policy)
	assert.Equal(t, []common.PolicyId{testPolicyA, testPolicyB}, m.Policies())
	assert.Equal(t, common.Coin(2), m.Get(testPolicyA, "z"))
	assert.Equal(t, common.Coin(0), m.Get(testPolicyB, "missing"))
	// Setting a zero amount removes the entry
	assert.Equal(t, 2, m.Set(testPolicyA, "z", 0).Len())
	// Set does not modify the original
	assert.Equal(t, 3, m.Len())
}

func TestMergeJoinTreatsMissingAsZero(t *testing.T) {
	a := common.NewAssetMap(
		common.AssetEntry[common.Unbounded]{Policy: testPolicyA, Name: "x", Amount: common.NewUnbounded(5)},
		common.AssetEntry[common.Unbounded]{Policy: testPolicyB, Name: "y", Amount: common.NewUnbounded(2)},
	)
	b := common.NewAssetMap(
		common.AssetEntry[common.Unbounded]{Policy: testPolicyA, Name: "x", Amount: common.NewUnbounded(5)},
		common.AssetEntry[common.Unbounded]{Policy: testPolicyA, Name: "w", Amount: common.NewUnbounded(1)},
	)
	diff := common.SubAssets(a, b)
	entries := diff.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, common.AssetName("w"), entries[0].Name)
	assert.Equal(t, "-1", entries[0].Amount.String())
	assert.Equal(t, common.AssetName("y"), entries[1].Name)
	assert.Equal(t, "2", entries[1].Amount.String())
	sum := common.AddAssets(a, b)
	assert.Equal(t, "10", sum.Get(testPolicyA, "x").String())
}

func TestBoundedAssetsUnderflow(t *testing.T) {
	m := common.NewAssetMap(
		common.AssetEntry[common.Unbounded]{Policy: testPolicyA, Name: "x", Amount: common.NewUnbounded(-1)},
	)
	_, err := common.BoundedAssets(m)
	var underflowErr *common.CoinUnderflowError
	assert.ErrorAs(t, err, &underflowErr)
}

func TestValuePartialOrder(t *testing.T) {
	tokens := func(n common.Coin) common.MultiAsset {
		return common.NewAssetMap(
			common.AssetEntry[common.Coin]{Policy: testPolicyA, Name: "tok", Amount: n},
		)
	}
	testDefs := []struct {
		name     string
		a        common.Value
		b        common.Value
		expected common.Ordering
	}{
		{name: "equal", a: common.NewValue(10, tokens(1)), b: common.NewValue(10, tokens(1)), expected: common.OrderEqual},
		{name: "coin greater", a: common.NewValue(11, tokens(1)), b: common.NewValue(10, tokens(1)), expected: common.OrderGreater},
		{name: "both less", a: common.NewValue(9, tokens(0)), b: common.NewValue(10, tokens(1)), expected: common.OrderLess},
		{name: "opposite directions", a: common.NewValue(11, tokens(0)), b: common.NewValue(10, tokens(1)), expected: common.OrderIncomparable},
		{name: "extra asset", a: common.NewValue(10, tokens(1)), b: common.NewValue(10, common.MultiAsset{}), expected: common.OrderGreater},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, testDef.a.Compare(testDef.b))
		})
	}
	assert.False(t, common.NewValue(100, common.MultiAsset{}).GreaterOrEqual(common.NewValue(1, tokens(1))))
	assert.True(t, common.NewValue(100, tokens(2)).GreaterOrEqual(common.NewValue(1, tokens(1))))
}

func TestValueCbor(t *testing.T) {
	plain := common.NewValue(1000000, common.MultiAsset{})
	data, err := cbor.Encode(plain)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1a, 0x00, 0x0f, 0x42, 0x40}, data)

	withAssets := common.NewValue(
		2000000,
		common.NewAssetMap(
			common.AssetEntry[common.Coin]{Policy: testPolicyA, Name: "tok", Amount: 7},
		),
	)
	data, err = cbor.Encode(withAssets)
	require.NoError(t, err)
	assert.True(t, cbor.IsArray(data))
	var decoded common.Value
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, common.OrderEqual, decoded.Compare(withAssets))
}
