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
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/blinklabs-io/utxoledger/cbor"
)

type VkeyWitness struct {
	cbor.StructAsArray
	Vkey      []byte
	Signature []byte
}

// KeyHash returns the hash of the verification key
func (w VkeyWitness) KeyHash() KeyHash {
	return Blake2b224Hash(w.Vkey)
}

type RedeemerTag uint8

const (
	RedeemerTagSpend  RedeemerTag = 0
	RedeemerTagMint   RedeemerTag = 1
	RedeemerTagCert   RedeemerTag = 2
	RedeemerTagReward RedeemerTag = 3
)

func (t RedeemerTag) String() string {
	switch t {
	case RedeemerTagSpend:
		return "spend"
	case RedeemerTagMint:
		return "mint"
	case RedeemerTagCert:
		return "cert"
	case RedeemerTagReward:
		return "reward"
	default:
		return "unknown"
	}
}

type ExUnits struct {
	cbor.StructAsArray
	Memory int64 `json:"memory"`
	Steps  int64 `json:"steps"`
}

// ErrInvalidExUnits is wrapped by errors for negative or overflowing execution units
var ErrInvalidExUnits = errors.New("invalid execution units")

// Validate rejects negative memory or step counts
func (e ExUnits) Validate() error {
	if e.Memory < 0 || e.Steps < 0 {
		return fmt.Errorf(
			"%w: memory %d, steps %d",
			ErrInvalidExUnits,
			e.Memory,
			e.Steps,
		)
	}
	return nil
}

func (e *ExUnits) UnmarshalCBOR(data []byte) error {
	type tExUnits ExUnits
	var tmp tExUnits
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	if err := ExUnits(tmp).Validate(); err != nil {
		return err
	}
	*e = ExUnits(tmp)
	return nil
}

// Add returns the sum of both units, failing on negative input or int64 overflow
func (e ExUnits) Add(other ExUnits) (ExUnits, error) {
	if err := e.Validate(); err != nil {
		return ExUnits{}, err
	}
	if err := other.Validate(); err != nil {
		return ExUnits{}, err
	}
	if other.Memory > math.MaxInt64-e.Memory || other.Steps > math.MaxInt64-e.Steps {
		return ExUnits{}, fmt.Errorf("%w: total overflows int64", ErrInvalidExUnits)
	}
	return ExUnits{
		Memory: e.Memory + other.Memory,
		Steps:  e.Steps + other.Steps,
	}, nil
}

type Redeemer struct {
	cbor.StructAsArray
	Tag     RedeemerTag
	Index   uint32
	Data    Datum
	ExUnits ExUnits
}

type redeemerKey struct {
	cbor.StructAsArray
	Tag   RedeemerTag
	Index uint32
}

type redeemerValue struct {
	cbor.StructAsArray
	Data    Datum
	ExUnits ExUnits
}

// Redeemers accepts both the legacy list encoding and the keyed map encoding. It always
// encodes as a list, sorted by tag and index
type Redeemers []Redeemer

func (r *Redeemers) UnmarshalCBOR(data []byte) error {
	if cbor.IsMap(data) {
		var tmp map[redeemerKey]redeemerValue
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return err
		}
		ret := make(Redeemers, 0, len(tmp))
		for k, v := range tmp {
			ret = append(
				ret,
				Redeemer{Tag: k.Tag, Index: k.Index, Data: v.Data, ExUnits: v.ExUnits},
			)
		}
		ret.sort()
		*r = ret
		return nil
	}
	var tmp []Redeemer
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	*r = tmp
	return nil
}

func (r Redeemers) sort() {
	slices.SortFunc(r, func(a, b Redeemer) int {
		if c := cmp.Compare(a.Tag, b.Tag); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}

// TotalExUnits sums the execution units of all redeemers
func (r Redeemers) TotalExUnits() (ExUnits, error) {
	var ret ExUnits
	for _, redeemer := range r {
		total, err := ret.Add(redeemer.ExUnits)
		if err != nil {
			return ExUnits{}, fmt.Errorf(
				"redeemer %s/%d: %w",
				redeemer.Tag,
				redeemer.Index,
				err,
			)
		}
		ret = total
	}
	return ret, nil
}

// Find returns the redeemer for the given purpose, if any
func (r Redeemers) Find(tag RedeemerTag, index uint32) (Redeemer, bool) {
	for _, redeemer := range r {
		if redeemer.Tag == tag && redeemer.Index == index {
			return redeemer, true
		}
	}
	return Redeemer{}, false
}

type WitnessSet struct {
	cbor.DecodeStoreCbor
	VkeyWitnesses      []VkeyWitness     `cbor:"0,keyasint,omitempty"`
	NativeScripts      []NativeScript    `cbor:"1,keyasint,omitempty"`
	BootstrapWitnesses []cbor.RawMessage `cbor:"2,keyasint,omitempty"`
	PlutusV1Scripts    []PlutusV1Script  `cbor:"3,keyasint,omitempty"`
	PlutusData         []Datum           `cbor:"4,keyasint,omitempty"`
	Redeemers          Redeemers         `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts    []PlutusV2Script  `cbor:"6,keyasint,omitempty"`
	PlutusV3Scripts    []PlutusV3Script  `cbor:"7,keyasint,omitempty"`
}

func (w *WitnessSet) UnmarshalCBOR(cborData []byte) error {
	if err := cbor.DecodeGeneric(cborData, w); err != nil {
		return err
	}
	w.SetCbor(cborData)
	return nil
}

func (w WitnessSet) MarshalCBOR() ([]byte, error) {
	if w.Cbor() != nil {
		return w.Cbor(), nil
	}
	type tWitnessSet WitnessSet
	return cbor.Encode(tWitnessSet(w))
}

// Scripts returns every script supplied in the witness set
func (w WitnessSet) Scripts() []Script {
	ret := make([]Script, 0, len(w.NativeScripts)+len(w.PlutusV1Scripts)+len(w.PlutusV2Scripts)+len(w.PlutusV3Scripts))
	for _, s := range w.NativeScripts {
		ret = append(ret, s)
	}
	for _, s := range w.PlutusV1Scripts {
		ret = append(ret, s)
	}
	for _, s := range w.PlutusV2Scripts {
		ret = append(ret, s)
	}
	for _, s := range w.PlutusV3Scripts {
		ret = append(ret, s)
	}
	return ret
}
