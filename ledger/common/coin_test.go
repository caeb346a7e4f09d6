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
	"encoding/hex"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/blinklabs-io/utxoledger/internal/test"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoinBounds(t *testing.T) {
	c, err := common.NewCoin(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, common.Coin(42), c)

	_, err = common.NewCoin(big.NewInt(-1))
	var underflowErr *common.CoinUnderflowError
	require.True(t, errors.As(err, &underflowErr))
	assert.Equal(t, int64(-1), underflowErr.Value.Int64())

	tooBig := new(big.Int).Add(new(big.Int).SetUint64(math.MaxUint64), big.NewInt(1))
	_, err = common.NewCoin(tooBig)
	var overflowErr *common.CoinOverflowError
	require.True(t, errors.As(err, &overflowErr))
	assert.Equal(t, 0, overflowErr.Value.Cmp(tooBig))

	c, err = common.NewCoin(new(big.Int).SetUint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, common.Coin(math.MaxUint64), c)
}

func TestUnboundedSumDoesNotWrap(t *testing.T) {
	a := common.Coin(math.MaxUint64).Unbounded()
	sum := a.Add(common.Coin(1).Unbounded())
	assert.Equal(t, "18446744073709551616", sum.String())
	_, err := sum.Coin()
	var overflowErr *common.CoinOverflowError
	assert.True(t, errors.As(err, &overflowErr))
	back, err := sum.Sub(common.NewUnbounded(1)).Coin()
	require.NoError(t, err)
	assert.Equal(t, common.Coin(math.MaxUint64), back)
}

func TestUnboundedOperations(t *testing.T) {
	a := common.NewUnbounded(10)
	b := common.NewUnbounded(3)
	assert.Equal(t, "7", a.Sub(b).String())
	assert.Equal(t, "-10", a.Neg().String())
	assert.Equal(t, "30", a.Mul(3).String())
	assert.Equal(t, 1, a.Cmp(b))
	assert.True(t, common.Unbounded{}.IsZero())
	// Operations never modify the receiver
	_ = a.Add(b)
	assert.Equal(t, "10", a.String())
}

func TestRoundTrips(t *testing.T) {
	for _, v := range []uint64{0, 1, 1000000, math.MaxUint64} {
		c, err := common.Coin(v).Unbounded().Coin()
		require.NoError(t, err)
		assert.Equal(t, common.Coin(v), c)
	}
	for _, v := range []int64{0, -5, 123456789, math.MinInt64} {
		u := common.NewUnbounded(v)
		assert.Equal(t, 0, u.Fractional().Round(common.RoundHalfEven).Cmp(u))
		assert.Equal(t, 0, u.Fractional().Round(common.RoundFloor).Cmp(u))
	}
}

func TestFractionalRoundHalfEven(t *testing.T) {
	testDefs := []struct {
		num      int64
		denom    int64
		expected int64
	}{
		{num: 1, denom: 2, expected: 0},
		{num: 3, denom: 2, expected: 2},
		{num: 5, denom: 2, expected: 2},
		{num: -1, denom: 2, expected: 0},
		{num: -3, denom: 2, expected: -2},
		{num: 7, denom: 3, expected: 2},
		{num: 8, denom: 3, expected: 3},
		{num: -7, denom: 3, expected: -2},
		{num: 4, denom: 1, expected: 4},
	}
	for _, testDef := range testDefs {
		f := common.NewFractional(testDef.num, testDef.denom)
		assert.Equal(
			t,
			testDef.expected,
			f.Round(common.RoundHalfEven).Big().Int64(),
			"rounding %d/%d",
			testDef.num,
			testDef.denom,
		)
	}
}

func TestFractionalRoundFloorCeil(t *testing.T) {
	f := common.NewFractional(-7, 2)
	assert.Equal(t, int64(-4), f.Round(common.RoundFloor).Big().Int64())
	assert.Equal(t, int64(-3), f.Round(common.RoundCeil).Big().Int64())
	g := common.NewFractional(7, 2)
	assert.Equal(t, int64(3), g.Round(common.RoundFloor).Big().Int64())
	assert.Equal(t, int64(4), g.Round(common.RoundCeil).Big().Int64())
}

func TestScaleIsExactUntilRounding(t *testing.T) {
	// 3 * (1/3) * 3 would lose precision with intermediate rounding
	third := common.NewFractional(1, 3)
	scaled := common.NewUnbounded(3).Scale(third).MulInt(3)
	assert.Equal(t, int64(3), scaled.Round(common.RoundHalfEven).Big().Int64())
}

func TestFractionalText(t *testing.T) {
	f := common.NewFractional(577, 10000)
	text, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "577/10000", string(text))
	var g common.Fractional
	require.NoError(t, g.UnmarshalText([]byte("0.0577")))
	assert.Equal(t, 0, f.Cmp(g))
}

func TestFractionalCbor(t *testing.T) {
	f := common.NewFractional(1, 3)
	data, err := f.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, "d81e820103", hex.EncodeToString(data))
	var decoded common.Fractional
	require.NoError(t, decoded.UnmarshalCBOR(data))
	assert.Equal(t, 0, f.Cmp(decoded))
	badDefs := map[string]string{
		"null numerator":   "d81e82f601",
		"null denominator": "d81e8201f6",
		"zero denominator": "d81e820100",
		"wrong tag":        "d81f820103",
	}
	for name, cborHex := range badDefs {
		t.Run(name, func(t *testing.T) {
			var bad common.Fractional
			assert.Error(t, bad.UnmarshalCBOR(test.DecodeHexString(cborHex)))
		})
	}
}

func TestUnboundedCbor(t *testing.T) {
	big1 := new(big.Int).Lsh(big.NewInt(1), 70)
	for _, v := range []common.Unbounded{
		common.NewUnbounded(-5),
		common.NewUnbounded(1000),
		common.NewUnboundedFromBig(big1),
	} {
		data, err := v.MarshalCBOR()
		require.NoError(t, err)
		var decoded common.Unbounded
		require.NoError(t, decoded.UnmarshalCBOR(data))
		assert.Equal(t, 0, v.Cmp(decoded))
	}
}
