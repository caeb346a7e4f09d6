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
	"fmt"

	"github.com/blinklabs-io/utxoledger/cbor"
)

// Ordering is the result of comparing two values under the partial order
type Ordering int

const (
	OrderIncomparable Ordering = iota
	OrderLess
	OrderEqual
	OrderGreater
)

func (o Ordering) String() string {
	switch o {
	case OrderLess:
		return "less"
	case OrderEqual:
		return "equal"
	case OrderGreater:
		return "greater"
	default:
		return "incomparable"
	}
}

// Value is an amount of lovelace plus any native assets
type Value struct {
	Coin   Coin
	Assets MultiAsset
}

func NewValue(coin Coin, assets MultiAsset) Value {
	return Value{Coin: coin, Assets: assets}
}

func (v Value) Unbounded() ValueUnbounded {
	return ValueUnbounded{
		Coin:   v.Coin.Unbounded(),
		Assets: v.Assets.Unbounded(),
	}
}

func (v Value) IsZero() bool {
	return v.Coin == 0 && v.Assets.IsEmpty()
}

func (v Value) Compare(o Value) Ordering {
	return v.Unbounded().Compare(o.Unbounded())
}

// GreaterOrEqual reports whether v is at least o. Incomparable values are not
func (v Value) GreaterOrEqual(o Value) bool {
	return v.Unbounded().GreaterOrEqual(o.Unbounded())
}

func (v Value) String() string {
	if v.Assets.IsEmpty() {
		return fmt.Sprintf("%d", v.Coin)
	}
	return fmt.Sprintf("%d + %s", v.Coin, v.Assets.String())
}

func (v Value) MarshalCBOR() ([]byte, error) {
	if v.Assets.IsEmpty() {
		return cbor.Encode(uint64(v.Coin))
	}
	tmp := []any{uint64(v.Coin), v.Assets}
	return cbor.Encode(tmp)
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	if cbor.IsArray(data) {
		var tmp struct {
			cbor.StructAsArray
			Coin   Coin
			Assets MultiAsset
		}
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return err
		}
		v.Coin = tmp.Coin
		v.Assets = tmp.Assets
		return nil
	}
	var coin uint64
	if _, err := cbor.Decode(data, &coin); err != nil {
		return err
	}
	v.Coin = Coin(coin)
	v.Assets = MultiAsset{}
	return nil
}

// ValueUnbounded is the signed, arbitrary precision counterpart of Value used for sums
type ValueUnbounded struct {
	Coin   Unbounded
	Assets MultiAssetUnbounded
}

func (v ValueUnbounded) Add(o ValueUnbounded) ValueUnbounded {
	return ValueUnbounded{
		Coin:   v.Coin.Add(o.Coin),
		Assets: AddAssets(v.Assets, o.Assets),
	}
}

func (v ValueUnbounded) Sub(o ValueUnbounded) ValueUnbounded {
	return ValueUnbounded{
		Coin:   v.Coin.Sub(o.Coin),
		Assets: SubAssets(v.Assets, o.Assets),
	}
}

func (v ValueUnbounded) Neg() ValueUnbounded {
	return ValueUnbounded{}.Sub(v)
}

func (v ValueUnbounded) IsZero() bool {
	return v.Coin.IsZero() && v.Assets.IsEmpty()
}

// Compare compares under the partial order: the result is only defined when the lovelace
// and every asset quantity differ in the same direction
func (v ValueUnbounded) Compare(o ValueUnbounded) Ordering {
	diff := v.Sub(o)
	var pos, neg bool
	switch diff.Coin.Sign() {
	case 1:
		pos = true
	case -1:
		neg = true
	}
	for _, entry := range diff.Assets.entries {
		if entry.Amount.Sign() > 0 {
			pos = true
		} else {
			neg = true
		}
		if pos && neg {
			return OrderIncomparable
		}
	}
	switch {
	case pos && neg:
		return OrderIncomparable
	case pos:
		return OrderGreater
	case neg:
		return OrderLess
	default:
		return OrderEqual
	}
}

func (v ValueUnbounded) Equal(o ValueUnbounded) bool {
	return v.Compare(o) == OrderEqual
}

func (v ValueUnbounded) GreaterOrEqual(o ValueUnbounded) bool {
	ord := v.Compare(o)
	return ord == OrderGreater || ord == OrderEqual
}

// Bounded converts back to a Value, failing if any quantity is out of range
func (v ValueUnbounded) Bounded() (Value, error) {
	coin, err := v.Coin.Coin()
	if err != nil {
		return Value{}, err
	}
	assets, err := BoundedAssets(v.Assets)
	if err != nil {
		return Value{}, err
	}
	return Value{Coin: coin, Assets: assets}, nil
}

func (v ValueUnbounded) String() string {
	if v.Assets.IsEmpty() {
		return v.Coin.String()
	}
	return fmt.Sprintf("%s + %s", v.Coin.String(), v.Assets.String())
}
