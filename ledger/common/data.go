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
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/utxoledger/cbor"
)

// Datum wraps Plutus data and keeps the original encoding for hashing
type Datum struct {
	cbor.DecodeStoreCbor
	Data data.PlutusData
}

func NewDatum(pd data.PlutusData) Datum {
	return Datum{Data: pd}
}

func (d *Datum) UnmarshalCBOR(cborData []byte) error {
	tmpData, err := data.Decode(cborData)
	if err != nil {
		return err
	}
	d.Data = tmpData
	d.SetCbor(cborData)
	return nil
}

func (d Datum) MarshalCBOR() ([]byte, error) {
	if d.Cbor() != nil {
		return d.Cbor(), nil
	}
	return data.Encode(d.Data)
}

// Hash returns the datum hash, computed over the original encoding when available
func (d Datum) Hash() Blake2b256 {
	cborData, err := d.MarshalCBOR()
	if err != nil {
		return Blake2b256{}
	}
	return Blake2b256Hash(cborData)
}
