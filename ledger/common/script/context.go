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

package script

import (
	"bytes"
	"errors"
	"slices"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

var ErrMissingDatum = errors.New("missing datum for spending script")

type ScriptContext interface {
	isScriptContext()
	ToPlutusData() data.PlutusData
}

type ScriptContextV1V2 struct {
	TxInfo  TxInfo
	Purpose ScriptInfo
	Version uint
}

func (ScriptContextV1V2) isScriptContext() {}

func (s ScriptContextV1V2) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		0,
		s.TxInfo.ToPlutusData(s.Version),
		s.Purpose.PurposeData(s.Version),
	)
}

type ScriptContextV3 struct {
	TxInfo   TxInfo
	Redeemer data.PlutusData
	Purpose  ScriptInfo
}

func (ScriptContextV3) isScriptContext() {}

func (s ScriptContextV3) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		0,
		s.TxInfo.ToPlutusData(common.ScriptRefTypePlutusV3),
		s.Redeemer,
		s.Purpose.InfoData(),
	)
}

func NewScriptContext(
	version uint,
	txInfo TxInfo,
	redeemer data.PlutusData,
	purpose ScriptInfo,
) ScriptContext {
	if version < common.ScriptRefTypePlutusV3 {
		return ScriptContextV1V2{
			TxInfo:  txInfo,
			Purpose: purpose,
			Version: version,
		}
	}
	return ScriptContextV3{
		TxInfo:   txInfo,
		Redeemer: redeemer,
		Purpose:  purpose,
	}
}

// TxInfo is the view of a transaction presented to scripts
type TxInfo struct {
	Tx              *common.Transaction
	Inputs          []common.Utxo
	ReferenceInputs []common.Utxo
	Purposes        []Purpose
	ValidRange      TimeRange
}

// NewTxInfo builds the script view of a transaction, resolving its inputs with the provided
// function. Inputs that cannot be resolved are left out
func NewTxInfo(tx *common.Transaction, resolve ResolverFunc) TxInfo {
	return TxInfo{
		Tx:              tx,
		Inputs:          expandInputs(common.SortInputs(tx.Body.Inputs), resolve),
		ReferenceInputs: expandInputs(common.SortInputs(tx.Body.ReferenceInputs), resolve),
		Purposes:        ScriptPurposes(tx, resolve),
		ValidRange: TimeRange{
			LowerBound: tx.Body.ValidityIntervalStart,
			UpperBound: tx.Body.Ttl,
		},
	}
}

func (t TxInfo) ToPlutusData(version uint) data.PlutusData {
	body := t.Tx.Body
	inInfo := func(u common.Utxo) data.PlutusData { return inInfoData(u, version) }
	outInfo := func(o common.TransactionOutput) data.PlutusData { return outputData(o, version) }
	certInfo := func(c common.Certificate) data.PlutusData { return certificateData(c, version) }
	keyHashInfo := func(h common.KeyHash) data.PlutusData { return data.NewByteString(h.Bytes()) }
	txId := data.NewByteString(t.Tx.Hash().Bytes())
	switch version {
	case common.ScriptRefTypePlutusV1, common.ScriptRefTypePlutusV2:
		fee := valueData(common.NewValue(body.Fee, common.MultiAsset{}))
		txId = data.NewConstr(0, txId)
		if version == common.ScriptRefTypePlutusV1 {
			return data.NewConstr(
				0,
				listData(t.Inputs, inInfo),
				listData(body.Outputs, outInfo),
				fee,
				mintData(body.Mint, version),
				listData(body.Certificates, certInfo),
				withdrawalsData(body.Withdrawals, version),
				t.ValidRange.ToPlutusData(),
				listData(sortedKeyHashes(body.RequiredSigners), keyHashInfo),
				t.dataInfo(version),
				txId,
			)
		}
		return data.NewConstr(
			0,
			listData(t.Inputs, inInfo),
			listData(t.ReferenceInputs, inInfo),
			listData(body.Outputs, outInfo),
			fee,
			mintData(body.Mint, version),
			listData(body.Certificates, certInfo),
			withdrawalsData(body.Withdrawals, version),
			t.ValidRange.ToPlutusData(),
			listData(sortedKeyHashes(body.RequiredSigners), keyHashInfo),
			t.redeemersInfo(version),
			t.dataInfo(version),
			txId,
		)
	}
	return data.NewConstr(
		0,
		listData(t.Inputs, inInfo),
		listData(t.ReferenceInputs, inInfo),
		listData(body.Outputs, outInfo),
		bigData(body.Fee.Unbounded()),
		mintData(body.Mint, version),
		listData(body.Certificates, certInfo),
		withdrawalsData(body.Withdrawals, version),
		t.ValidRange.ToPlutusData(),
		listData(sortedKeyHashes(body.RequiredSigners), keyHashInfo),
		t.redeemersInfo(version),
		t.dataInfo(version),
		txId,
		// Governance votes and proposals are not modeled
		data.NewMap([][2]data.PlutusData{}),
		data.NewList(),
		nothingData(),
		nothingData(),
	)
}

// Arguments returns the arguments applied to a script evaluated for the given purpose
func (t TxInfo) Arguments(
	version uint,
	purpose Purpose,
	redeemer common.Redeemer,
) ([]data.PlutusData, error) {
	ctx := NewScriptContext(version, t, redeemer.Data.Data, purpose.Info).ToPlutusData()
	if version >= common.ScriptRefTypePlutusV3 {
		return []data.PlutusData{ctx}, nil
	}
	if spending, ok := purpose.Info.(ScriptInfoSpending); ok {
		if spending.Datum == nil {
			return nil, ErrMissingDatum
		}
		return []data.PlutusData{spending.Datum, redeemer.Data.Data, ctx}, nil
	}
	return []data.PlutusData{redeemer.Data.Data, ctx}, nil
}

func (t TxInfo) redeemersInfo(version uint) data.PlutusData {
	pairs := make([][2]data.PlutusData, 0, len(t.Tx.WitnessSet.Redeemers))
	for _, redeemer := range t.Tx.WitnessSet.Redeemers {
		for _, purpose := range t.Purposes {
			if purpose.Tag == redeemer.Tag && purpose.Index == redeemer.Index {
				pairs = append(
					pairs,
					[2]data.PlutusData{
						purpose.Info.PurposeData(version),
						redeemer.Data.Data,
					},
				)
				break
			}
		}
	}
	return data.NewMap(pairs)
}

func (t TxInfo) dataInfo(version uint) data.PlutusData {
	datums := slices.Clone(t.Tx.WitnessSet.PlutusData)
	slices.SortFunc(
		datums,
		func(a, b common.Datum) int {
			hashA, hashB := a.Hash(), b.Hash()
			return bytes.Compare(hashA[:], hashB[:])
		},
	)
	if version == common.ScriptRefTypePlutusV1 {
		return listData(datums, func(d common.Datum) data.PlutusData {
			return data.NewConstr(0, data.NewByteString(d.Hash().Bytes()), d.Data)
		})
	}
	pairs := make(KeyValuePairs[rawData, rawData], len(datums))
	for i, datum := range datums {
		pairs[i] = KeyValuePair[rawData, rawData]{
			Key:   rawData{data.NewByteString(datum.Hash().Bytes())},
			Value: rawData{datum.Data},
		}
	}
	return pairs.ToPlutusData()
}

func withdrawalsData(withdrawals []common.Withdrawal, version uint) data.PlutusData {
	stakeCred := func(w common.Withdrawal) common.Credential {
		cred, _ := w.RewardAccount.StakeCredential()
		return cred
	}
	switch version {
	case common.ScriptRefTypePlutusV1:
		return listData(withdrawals, func(w common.Withdrawal) data.PlutusData {
			return data.NewConstr(
				0,
				stakingCredentialData(stakeCred(w)),
				bigData(w.Amount.Unbounded()),
			)
		})
	case common.ScriptRefTypePlutusV2:
		pairs := make([][2]data.PlutusData, len(withdrawals))
		for i, w := range withdrawals {
			pairs[i] = [2]data.PlutusData{
				stakingCredentialData(stakeCred(w)),
				bigData(w.Amount.Unbounded()),
			}
		}
		return data.NewMap(pairs)
	}
	pairs := make([][2]data.PlutusData, len(withdrawals))
	for i, w := range withdrawals {
		pairs[i] = [2]data.PlutusData{
			credentialData(stakeCred(w)),
			bigData(w.Amount.Unbounded()),
		}
	}
	return data.NewMap(pairs)
}

// TimeRange is the validity interval of a transaction, expressed in slots
type TimeRange struct {
	LowerBound *uint64
	UpperBound *uint64
}

func (t TimeRange) ToPlutusData() data.PlutusData {
	lower := data.NewConstr(0, data.NewConstr(0), boolData(true))
	if t.LowerBound != nil {
		lower = data.NewConstr(
			0,
			data.NewConstr(1, uintData(*t.LowerBound)),
			boolData(true),
		)
	}
	// NOTE: infinite bounds are always inclusive by convention, the TTL is exclusive
	upper := data.NewConstr(0, data.NewConstr(2), boolData(true))
	if t.UpperBound != nil {
		upper = data.NewConstr(
			0,
			data.NewConstr(1, uintData(*t.UpperBound)),
			boolData(false),
		)
	}
	return data.NewConstr(0, lower, upper)
}

func expandInputs(
	inputs []common.TransactionInput,
	resolve ResolverFunc,
) []common.Utxo {
	ret := make([]common.Utxo, 0, len(inputs))
	for _, input := range inputs {
		if utxo, ok := resolve(input); ok {
			ret = append(ret, utxo)
		}
	}
	return ret
}
