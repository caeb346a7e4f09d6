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
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/blinklabs-io/utxoledger/cbor"
)

// Coin is a bounded, non-negative quantity of lovelace. There is deliberately no
// Coin.Add: sums are computed on Unbounded and converted back with Unbounded.Coin
type Coin uint64

var maxCoin = new(big.Int).SetUint64(math.MaxUint64)

// NewCoin converts an arbitrary precision integer into a Coin, failing if it is
// outside the representable range
func NewCoin(v *big.Int) (Coin, error) {
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 {
		return 0, &CoinUnderflowError{Value: new(big.Int).Set(v)}
	}
	if v.Cmp(maxCoin) > 0 {
		return 0, &CoinOverflowError{Value: new(big.Int).Set(v)}
	}
	return Coin(v.Uint64()), nil
}

func (c Coin) Unbounded() Unbounded {
	return Unbounded{v: new(big.Int).SetUint64(uint64(c))}
}

type CoinOverflowError struct {
	Value *big.Int
}

func (e *CoinOverflowError) Error() string {
	return fmt.Sprintf("coin overflow: %s exceeds maximum %d", e.Value.String(), uint64(math.MaxUint64))
}

type CoinUnderflowError struct {
	Value *big.Int
}

func (e *CoinUnderflowError) Error() string {
	return fmt.Sprintf("coin underflow: %s is negative", e.Value.String())
}

// Unbounded is an arbitrary precision signed quantity used for intermediate sums.
// The zero value is zero. Operations never modify their receiver or arguments
type Unbounded struct {
	v *big.Int
}

func NewUnbounded(v int64) Unbounded {
	return Unbounded{v: big.NewInt(v)}
}

func NewUnboundedFromBig(v *big.Int) Unbounded {
	if v == nil {
		return Unbounded{}
	}
	return Unbounded{v: new(big.Int).Set(v)}
}

func (u Unbounded) bigInt() *big.Int {
	if u.v == nil {
		return new(big.Int)
	}
	return u.v
}

// Big returns a copy of the underlying value
func (u Unbounded) Big() *big.Int {
	return new(big.Int).Set(u.bigInt())
}

func (u Unbounded) Add(o Unbounded) Unbounded {
	return Unbounded{v: new(big.Int).Add(u.bigInt(), o.bigInt())}
}

func (u Unbounded) Sub(o Unbounded) Unbounded {
	return Unbounded{v: new(big.Int).Sub(u.bigInt(), o.bigInt())}
}

func (u Unbounded) Neg() Unbounded {
	return Unbounded{v: new(big.Int).Neg(u.bigInt())}
}

// Mul scales by an integer factor
func (u Unbounded) Mul(factor int64) Unbounded {
	return Unbounded{v: new(big.Int).Mul(u.bigInt(), big.NewInt(factor))}
}

// Scale multiplies by a rational factor. The result is exact; callers round explicitly
func (u Unbounded) Scale(f Fractional) Fractional {
	return u.Fractional().Mul(f)
}

func (u Unbounded) Cmp(o Unbounded) int {
	return u.bigInt().Cmp(o.bigInt())
}

func (u Unbounded) Sign() int {
	return u.bigInt().Sign()
}

func (u Unbounded) IsZero() bool {
	return u.Sign() == 0
}

func (u Unbounded) Coin() (Coin, error) {
	return NewCoin(u.bigInt())
}

func (u Unbounded) Fractional() Fractional {
	return Fractional{r: new(big.Rat).SetInt(u.bigInt())}
}

func (u Unbounded) String() string {
	return u.bigInt().String()
}

func (u Unbounded) MarshalCBOR() ([]byte, error) {
	v := u.bigInt()
	switch {
	case v.IsInt64():
		return cbor.Encode(v.Int64())
	case v.IsUint64():
		return cbor.Encode(v.Uint64())
	default:
		return cbor.Encode(v)
	}
}

func (u *Unbounded) UnmarshalCBOR(data []byte) error {
	tmp := new(big.Int)
	if _, err := cbor.Decode(data, tmp); err != nil {
		return err
	}
	u.v = tmp
	return nil
}

type RoundingMode int

const (
	// RoundHalfEven rounds to the nearest integer, with ties going to the even neighbor
	RoundHalfEven RoundingMode = iota
	RoundFloor
	RoundCeil
)

// Fractional is an arbitrary precision rational quantity used for rates
type Fractional struct {
	r *big.Rat
}

func NewFractional(num int64, denom int64) Fractional {
	if denom == 0 {
		panic("fractional denominator must not be zero")
	}
	return Fractional{r: big.NewRat(num, denom)}
}

func NewFractionalFromRat(r *big.Rat) Fractional {
	if r == nil {
		return Fractional{}
	}
	return Fractional{r: new(big.Rat).Set(r)}
}

func (f Fractional) rat() *big.Rat {
	if f.r == nil {
		return new(big.Rat)
	}
	return f.r
}

// Rat returns a copy of the underlying value
func (f Fractional) Rat() *big.Rat {
	return new(big.Rat).Set(f.rat())
}

func (f Fractional) Add(o Fractional) Fractional {
	return Fractional{r: new(big.Rat).Add(f.rat(), o.rat())}
}

func (f Fractional) Sub(o Fractional) Fractional {
	return Fractional{r: new(big.Rat).Sub(f.rat(), o.rat())}
}

func (f Fractional) Mul(o Fractional) Fractional {
	return Fractional{r: new(big.Rat).Mul(f.rat(), o.rat())}
}

func (f Fractional) MulInt(v int64) Fractional {
	return Fractional{r: new(big.Rat).Mul(f.rat(), new(big.Rat).SetInt64(v))}
}

func (f Fractional) Neg() Fractional {
	return Fractional{r: new(big.Rat).Neg(f.rat())}
}

func (f Fractional) Cmp(o Fractional) int {
	return f.rat().Cmp(o.rat())
}

func (f Fractional) IsZero() bool {
	return f.rat().Sign() == 0
}

// Round converts to Unbounded using the given rounding mode
func (f Fractional) Round(mode RoundingMode) Unbounded {
	r := f.rat()
	// Euclidean division: the remainder is always in [0, denom) since denom > 0
	quo, rem := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	if rem.Sign() == 0 {
		return Unbounded{v: quo}
	}
	switch mode {
	case RoundFloor:
	case RoundCeil:
		quo.Add(quo, big.NewInt(1))
	default:
		switch new(big.Int).Lsh(rem, 1).Cmp(r.Denom()) {
		case 1:
			quo.Add(quo, big.NewInt(1))
		case 0:
			if quo.Bit(0) == 1 {
				quo.Add(quo, big.NewInt(1))
			}
		}
	}
	return Unbounded{v: quo}
}

func (f Fractional) String() string {
	return f.rat().RatString()
}

func (f Fractional) MarshalText() ([]byte, error) {
	return []byte(f.rat().RatString()), nil
}

func (f *Fractional) UnmarshalText(text []byte) error {
	tmp, ok := new(big.Rat).SetString(string(text))
	if !ok {
		return errors.New("invalid fractional value: " + string(text))
	}
	f.r = tmp
	return nil
}

// MarshalCBOR encodes as a tag 30 rational, as used for unit intervals in certificates
func (f Fractional) MarshalCBOR() ([]byte, error) {
	r := f.rat()
	return cbor.Encode(
		cbor.Tag{
			Number:  cborTagRational,
			Content: []*big.Int{r.Num(), r.Denom()},
		},
	)
}

func (f *Fractional) UnmarshalCBOR(data []byte) error {
	var tmp struct {
		cbor.StructAsArray
		Num   *big.Int
		Denom *big.Int
	}
	var tmpTag cbor.RawTag
	if _, err := cbor.Decode(data, &tmpTag); err != nil {
		return err
	}
	if tmpTag.Number != cborTagRational {
		return fmt.Errorf("unexpected tag number %d for rational", tmpTag.Number)
	}
	if _, err := cbor.Decode(tmpTag.Content, &tmp); err != nil {
		return err
	}
	if tmp.Num == nil {
		return errors.New("rational numerator must not be null")
	}
	if tmp.Denom == nil || tmp.Denom.Sign() == 0 {
		return errors.New("rational denominator must not be zero")
	}
	f.r = new(big.Rat).SetFrac(tmp.Num, tmp.Denom)
	return nil
}

const cborTagRational = 30
