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
	"fmt"
	"slices"
	"strings"

	"github.com/blinklabs-io/utxoledger/cbor"
)

// AssetQuantity is the set of numeric representations an asset map can hold
type AssetQuantity interface {
	Coin | Unbounded | Fractional
}

// AssetName holds the raw bytes of an asset name
type AssetName string

func (n AssetName) Bytes() []byte {
	return []byte(n)
}

type AssetEntry[T AssetQuantity] struct {
	Policy PolicyId
	Name   AssetName
	Amount T
}

// AssetMap is an ordered mapping of (policy, asset name) to a quantity. Entries are kept
// sorted by policy ID and then asset name, and zero quantities are never stored
type AssetMap[T AssetQuantity] struct {
	entries []AssetEntry[T]
}

type (
	MultiAsset           = AssetMap[Coin]
	MultiAssetUnbounded  = AssetMap[Unbounded]
	MultiAssetFractional = AssetMap[Fractional]
)

func compareAssetKey(p1 PolicyId, n1 AssetName, p2 PolicyId, n2 AssetName) int {
	if c := bytes.Compare(p1[:], p2[:]); c != 0 {
		return c
	}
	return strings.Compare(string(n1), string(n2))
}

func isZeroQuantity[T AssetQuantity](v T) bool {
	switch x := any(v).(type) {
	case Coin:
		return x == 0
	case Unbounded:
		return x.IsZero()
	case Fractional:
		return x.IsZero()
	}
	return false
}

func toUnbounded[T AssetQuantity](v T) Unbounded {
	switch x := any(v).(type) {
	case Coin:
		return x.Unbounded()
	case Unbounded:
		return x
	case Fractional:
		return x.Round(RoundHalfEven)
	}
	return Unbounded{}
}

func toFractional[T AssetQuantity](v T) Fractional {
	switch x := any(v).(type) {
	case Coin:
		return x.Unbounded().Fractional()
	case Unbounded:
		return x.Fractional()
	case Fractional:
		return x
	}
	return Fractional{}
}

// NewAssetMap builds an asset map from the provided entries. Later entries for the same
// key replace earlier ones
func NewAssetMap[T AssetQuantity](entries ...AssetEntry[T]) AssetMap[T] {
	var ret AssetMap[T]
	for _, entry := range entries {
		ret = ret.Set(entry.Policy, entry.Name, entry.Amount)
	}
	return ret
}

func (m AssetMap[T]) find(policy PolicyId, name AssetName) (int, bool) {
	return slices.BinarySearchFunc(
		m.entries,
		AssetEntry[T]{Policy: policy, Name: name},
		func(a, b AssetEntry[T]) int {
			return compareAssetKey(a.Policy, a.Name, b.Policy, b.Name)
		},
	)
}

// Get returns the quantity for the asset, or zero when absent
func (m AssetMap[T]) Get(policy PolicyId, name AssetName) T {
	idx, found := m.find(policy, name)
	if !found {
		var zero T
		return zero
	}
	return m.entries[idx].Amount
}

// Set returns a copy of the map with the quantity for the asset replaced
func (m AssetMap[T]) Set(policy PolicyId, name AssetName, amount T) AssetMap[T] {
	idx, found := m.find(policy, name)
	entries := slices.Clone(m.entries)
	switch {
	case isZeroQuantity(amount):
		if found {
			entries = slices.Delete(entries, idx, idx+1)
		}
	case found:
		entries[idx].Amount = amount
	default:
		entries = slices.Insert(
			entries,
			idx,
			AssetEntry[T]{Policy: policy, Name: name, Amount: amount},
		)
	}
	return AssetMap[T]{entries: entries}
}

// Entries returns the entries in canonical order
func (m AssetMap[T]) Entries() []AssetEntry[T] {
	return slices.Clone(m.entries)
}

func (m AssetMap[T]) Len() int {
	return len(m.entries)
}

func (m AssetMap[T]) IsEmpty() bool {
	return len(m.entries) == 0
}

// Policies returns the distinct policy IDs in canonical order
func (m AssetMap[T]) Policies() []PolicyId {
	var ret []PolicyId
	for _, entry := range m.entries {
		if len(ret) == 0 || ret[len(ret)-1] != entry.Policy {
			ret = append(ret, entry.Policy)
		}
	}
	return ret
}

func (m AssetMap[T]) Unbounded() MultiAssetUnbounded {
	ret := AssetMap[Unbounded]{}
	for _, entry := range m.entries {
		ret.entries = append(
			ret.entries,
			AssetEntry[Unbounded]{Policy: entry.Policy, Name: entry.Name, Amount: toUnbounded(entry.Amount)},
		)
	}
	// Rounding fractional amounts may produce zeros
	ret.entries = slices.DeleteFunc(ret.entries, func(e AssetEntry[Unbounded]) bool {
		return e.Amount.IsZero()
	})
	return ret
}

func (m AssetMap[T]) Fractional() MultiAssetFractional {
	ret := AssetMap[Fractional]{}
	for _, entry := range m.entries {
		ret.entries = append(
			ret.entries,
			AssetEntry[Fractional]{Policy: entry.Policy, Name: entry.Name, Amount: toFractional(entry.Amount)},
		)
	}
	return ret
}

func (m AssetMap[T]) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, entry := range m.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s.%x: %v", entry.Policy.String(), []byte(entry.Name), entry.Amount)
	}
	sb.WriteString("}")
	return sb.String()
}

// MergeJoin walks both maps in canonical key order and combines the quantities for each
// key present in either map. A key missing from one side is passed as that side's zero
// value. Zero results are dropped
func MergeJoin[A, B, C AssetQuantity](
	a AssetMap[A],
	b AssetMap[B],
	f func(A, B) C,
) AssetMap[C] {
	ret := AssetMap[C]{
		entries: make([]AssetEntry[C], 0, max(len(a.entries), len(b.entries))),
	}
	var zeroA A
	var zeroB B
	appendEntry := func(policy PolicyId, name AssetName, amount C) {
		if !isZeroQuantity(amount) {
			ret.entries = append(
				ret.entries,
				AssetEntry[C]{Policy: policy, Name: name, Amount: amount},
			)
		}
	}
	i, j := 0, 0
	for i < len(a.entries) || j < len(b.entries) {
		switch {
		case j >= len(b.entries):
			appendEntry(a.entries[i].Policy, a.entries[i].Name, f(a.entries[i].Amount, zeroB))
			i++
		case i >= len(a.entries):
			appendEntry(b.entries[j].Policy, b.entries[j].Name, f(zeroA, b.entries[j].Amount))
			j++
		default:
			ea, eb := a.entries[i], b.entries[j]
			switch c := compareAssetKey(ea.Policy, ea.Name, eb.Policy, eb.Name); {
			case c < 0:
				appendEntry(ea.Policy, ea.Name, f(ea.Amount, zeroB))
				i++
			case c > 0:
				appendEntry(eb.Policy, eb.Name, f(zeroA, eb.Amount))
				j++
			default:
				appendEntry(ea.Policy, ea.Name, f(ea.Amount, eb.Amount))
				i++
				j++
			}
		}
	}
	return ret
}

func AddAssets(a, b MultiAssetUnbounded) MultiAssetUnbounded {
	return MergeJoin(a, b, func(x, y Unbounded) Unbounded { return x.Add(y) })
}

func SubAssets(a, b MultiAssetUnbounded) MultiAssetUnbounded {
	return MergeJoin(a, b, func(x, y Unbounded) Unbounded { return x.Sub(y) })
}

// BoundedAssets converts back to bounded quantities, failing on the first entry that is
// out of range
func BoundedAssets(m MultiAssetUnbounded) (MultiAsset, error) {
	ret := AssetMap[Coin]{}
	for _, entry := range m.entries {
		amount, err := entry.Amount.Coin()
		if err != nil {
			return AssetMap[Coin]{}, fmt.Errorf(
				"asset %s.%x: %w",
				entry.Policy.String(),
				[]byte(entry.Name),
				err,
			)
		}
		ret.entries = append(
			ret.entries,
			AssetEntry[Coin]{Policy: entry.Policy, Name: entry.Name, Amount: amount},
		)
	}
	return ret, nil
}

func (m AssetMap[T]) MarshalCBOR() ([]byte, error) {
	tmp := make(map[cbor.ByteString]map[cbor.ByteString]T)
	for _, entry := range m.entries {
		policyKey := cbor.NewByteString(entry.Policy.Bytes())
		if _, ok := tmp[policyKey]; !ok {
			tmp[policyKey] = make(map[cbor.ByteString]T)
		}
		tmp[policyKey][cbor.NewByteString(entry.Name.Bytes())] = entry.Amount
	}
	return cbor.Encode(tmp)
}

func (m *AssetMap[T]) UnmarshalCBOR(data []byte) error {
	tmp := make(map[cbor.ByteString]map[cbor.ByteString]T)
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	entries := []AssetEntry[T]{}
	for policyKey, assets := range tmp {
		if len(policyKey.Bytes()) != Blake2b224Size {
			return fmt.Errorf("invalid policy ID length: %d", len(policyKey.Bytes()))
		}
		policy := NewBlake2b224(policyKey.Bytes())
		for nameKey, amount := range assets {
			if len(nameKey.Bytes()) > 32 {
				return fmt.Errorf("asset name too long: %d bytes", len(nameKey.Bytes()))
			}
			if isZeroQuantity(amount) {
				continue
			}
			entries = append(
				entries,
				AssetEntry[T]{Policy: policy, Name: AssetName(nameKey.Bytes()), Amount: amount},
			)
		}
	}
	slices.SortFunc(entries, func(a, b AssetEntry[T]) int {
		return compareAssetKey(a.Policy, a.Name, b.Policy, b.Name)
	})
	m.entries = entries
	return nil
}
