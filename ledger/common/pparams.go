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
	"encoding/json"
	"os"
	"slices"

	"github.com/blinklabs-io/utxoledger/cbor"
)

type ExecutionPrices struct {
	MemPrice  Fractional `json:"memPrice"`
	StepPrice Fractional `json:"stepPrice"`
}

// Cost returns the exact lovelace cost of the execution units
func (p ExecutionPrices) Cost(exUnits ExUnits) Fractional {
	return p.MemPrice.MulInt(exUnits.Memory).Add(p.StepPrice.MulInt(exUnits.Steps))
}

type ProtocolVersion struct {
	Major uint `json:"major"`
	Minor uint `json:"minor"`
}

type ProtocolParameters struct {
	MinFeeA              uint64           `json:"minFeeA"`
	MinFeeB              uint64           `json:"minFeeB"`
	MaxTxSize            uint64           `json:"maxTxSize"`
	MaxValueSize         uint64           `json:"maxValueSize"`
	KeyDeposit           uint64           `json:"keyDeposit"`
	PoolDeposit          uint64           `json:"poolDeposit"`
	DRepDeposit          uint64           `json:"drepDeposit"`
	CoinsPerUtxoByte     uint64           `json:"coinsPerUtxoByte"`
	CollateralPercentage uint64           `json:"collateralPercentage"`
	MaxCollateralInputs  uint64           `json:"maxCollateralInputs"`
	MaxTxExUnits         ExUnits          `json:"maxTxExUnits"`
	ExecutionPrices      ExecutionPrices  `json:"executionPrices"`
	CostModels           map[uint][]int64 `json:"costModels"`
	ProtocolVersion      ProtocolVersion  `json:"protocolVersion"`
}

// DefaultProtocolParameters returns parameters matching current mainnet values
func DefaultProtocolParameters() *ProtocolParameters {
	return &ProtocolParameters{
		MinFeeA:              44,
		MinFeeB:              155381,
		MaxTxSize:            16384,
		MaxValueSize:         5000,
		KeyDeposit:           2000000,
		PoolDeposit:          500000000,
		DRepDeposit:          500000000,
		CoinsPerUtxoByte:     4310,
		CollateralPercentage: 150,
		MaxCollateralInputs:  3,
		MaxTxExUnits: ExUnits{
			Memory: 14000000,
			Steps:  10000000000,
		},
		ExecutionPrices: ExecutionPrices{
			MemPrice:  NewFractional(577, 10000),
			StepPrice: NewFractional(721, 10000000),
		},
		CostModels: map[uint][]int64{},
		ProtocolVersion: ProtocolVersion{
			Major: 10,
		},
	}
}

// NewProtocolParametersFromFile loads protocol parameters from a JSON file. Fields missing
// from the file keep their default values
func NewProtocolParametersFromFile(path string) (*ProtocolParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ret := DefaultProtocolParameters()
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Clone returns a deep copy
func (p *ProtocolParameters) Clone() *ProtocolParameters {
	ret := *p
	ret.CostModels = make(map[uint][]int64, len(p.CostModels))
	for lang, model := range p.CostModels {
		ret.CostModels[lang] = slices.Clone(model)
	}
	return &ret
}

// MinFee returns the minimum fee for a transaction of the given size with the given
// total execution units
func (p *ProtocolParameters) MinFee(txSize uint64, exUnits ExUnits) (Unbounded, error) {
	if err := exUnits.Validate(); err != nil {
		return Unbounded{}, err
	}
	sizeFee := Coin(p.MinFeeA).Unbounded().Mul(int64(txSize)) // #nosec G115
	execFee := p.ExecutionPrices.Cost(exUnits).Round(RoundCeil)
	return sizeFee.Add(Coin(p.MinFeeB).Unbounded()).Add(execFee), nil
}

// MinUtxoValue returns the minimum lovelace an output must carry
func (p *ProtocolParameters) MinUtxoValue(output TransactionOutput) Coin {
	// Fixed overhead for the input reference and the UTXO entry
	const utxoEntryOverhead = 160
	return Coin((utxoEntryOverhead + uint64(output.Size())) * p.CoinsPerUtxoByte) // #nosec G115
}

// LanguageViews encodes the cost models of the given languages as folded into the script
// data hash
func (p *ProtocolParameters) LanguageViews(languages []uint) ([]byte, error) {
	views := make(map[uint][]int64, len(languages))
	for _, lang := range languages {
		model := p.CostModels[lang]
		if model == nil {
			model = []int64{}
		}
		views[lang] = model
	}
	return cbor.Encode(views)
}

// ScriptDataHash computes the hash binding the redeemers, datums and the protocol
// parameter view of the languages in use
func ScriptDataHash(
	redeemers Redeemers,
	datums []Datum,
	pp *ProtocolParameters,
	languages []uint,
) (Blake2b256, error) {
	var preimage []byte
	if len(redeemers) > 0 {
		redeemerCbor, err := cbor.Encode([]Redeemer(redeemers))
		if err != nil {
			return Blake2b256{}, err
		}
		preimage = append(preimage, redeemerCbor...)
	} else {
		preimage = append(preimage, cbor.CborTypeArray)
	}
	if len(datums) > 0 {
		datumCbor, err := cbor.Encode(datums)
		if err != nil {
			return Blake2b256{}, err
		}
		preimage = append(preimage, datumCbor...)
	}
	views, err := pp.LanguageViews(languages)
	if err != nil {
		return Blake2b256{}, err
	}
	preimage = append(preimage, views...)
	return Blake2b256Hash(preimage), nil
}
