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
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// ScriptInfo describes the item of a transaction that a script is guarding
type ScriptInfo interface {
	isScriptInfo()
	ScriptHash() common.ScriptHash
	// PurposeData encodes the purpose without any datum
	PurposeData(version uint) data.PlutusData
	// InfoData encodes the purpose as presented to Plutus V3 scripts
	InfoData() data.PlutusData
}

type ScriptInfoMinting struct {
	PolicyId common.PolicyId
}

func (ScriptInfoMinting) isScriptInfo() {}

func (s ScriptInfoMinting) ScriptHash() common.ScriptHash {
	return s.PolicyId
}

func (s ScriptInfoMinting) PurposeData(uint) data.PlutusData {
	return data.NewConstr(
		0,
		data.NewByteString(s.PolicyId.Bytes()),
	)
}

func (s ScriptInfoMinting) InfoData() data.PlutusData {
	return s.PurposeData(common.ScriptRefTypePlutusV3)
}

type ScriptInfoSpending struct {
	Input common.Utxo
	Datum data.PlutusData
}

func (ScriptInfoSpending) isScriptInfo() {}

func (s ScriptInfoSpending) ScriptHash() common.ScriptHash {
	cred, _ := s.Input.Output.Address.PaymentCredential()
	return cred.Hash
}

func (s ScriptInfoSpending) PurposeData(version uint) data.PlutusData {
	return data.NewConstr(
		1,
		outRefData(s.Input.Id, version),
	)
}

func (s ScriptInfoSpending) InfoData() data.PlutusData {
	datum := nothingData()
	if s.Datum != nil {
		datum = justData(s.Datum)
	}
	return data.NewConstr(
		1,
		outRefData(s.Input.Id, common.ScriptRefTypePlutusV3),
		datum,
	)
}

type ScriptInfoRewarding struct {
	StakeCredential common.Credential
}

func (ScriptInfoRewarding) isScriptInfo() {}

func (s ScriptInfoRewarding) ScriptHash() common.ScriptHash {
	return s.StakeCredential.Hash
}

func (s ScriptInfoRewarding) PurposeData(version uint) data.PlutusData {
	if version < common.ScriptRefTypePlutusV3 {
		return data.NewConstr(2, stakingCredentialData(s.StakeCredential))
	}
	return data.NewConstr(2, credentialData(s.StakeCredential))
}

func (s ScriptInfoRewarding) InfoData() data.PlutusData {
	return s.PurposeData(common.ScriptRefTypePlutusV3)
}

type ScriptInfoCertifying struct {
	Index       uint32
	Certificate common.Certificate
	Credential  common.Credential
}

func (ScriptInfoCertifying) isScriptInfo() {}

func (s ScriptInfoCertifying) ScriptHash() common.ScriptHash {
	return s.Credential.Hash
}

func (s ScriptInfoCertifying) PurposeData(version uint) data.PlutusData {
	if version < common.ScriptRefTypePlutusV3 {
		return data.NewConstr(3, certificateData(s.Certificate, version))
	}
	return data.NewConstr(
		3,
		uintData(uint64(s.Index)),
		certificateData(s.Certificate, version),
	)
}

func (s ScriptInfoCertifying) InfoData() data.PlutusData {
	return s.PurposeData(common.ScriptRefTypePlutusV3)
}

// Purpose pairs a script-guarded item with the redeemer pointer that addresses it
type Purpose struct {
	Tag   common.RedeemerTag
	Index uint32
	Info  ScriptInfo
}

// ResolverFunc looks up the output referenced by a transaction input
type ResolverFunc func(common.TransactionInput) (common.Utxo, bool)

// ScriptPurposes returns every script-guarded item of the transaction in redeemer order.
// Spending inputs that cannot be resolved are omitted
func ScriptPurposes(tx *common.Transaction, resolve ResolverFunc) []Purpose {
	var ret []Purpose
	witnessData := make(map[common.Blake2b256]data.PlutusData, len(tx.WitnessSet.PlutusData))
	for _, datum := range tx.WitnessSet.PlutusData {
		witnessData[datum.Hash()] = datum.Data
	}
	for idx, input := range common.SortInputs(tx.Body.Inputs) {
		utxo, ok := resolve(input)
		if !ok {
			continue
		}
		cred, ok := utxo.Output.Address.PaymentCredential()
		if !ok || !cred.IsScript() {
			continue
		}
		var datum data.PlutusData
		switch {
		case utxo.Output.Datum != nil:
			datum = utxo.Output.Datum.Data
		case utxo.Output.DatumHash != nil:
			datum = witnessData[*utxo.Output.DatumHash]
		}
		ret = append(
			ret,
			Purpose{
				Tag:   common.RedeemerTagSpend,
				Index: uint32(idx), // #nosec G115
				Info: ScriptInfoSpending{
					Input: utxo,
					Datum: datum,
				},
			},
		)
	}
	for idx, policy := range tx.Body.Mint.Policies() {
		ret = append(
			ret,
			Purpose{
				Tag:   common.RedeemerTagMint,
				Index: uint32(idx), // #nosec G115
				Info:  ScriptInfoMinting{PolicyId: policy},
			},
		)
	}
	for idx, cert := range tx.Body.Certificates {
		for _, cred := range common.CertificateWitnessCredentials(cert) {
			if !cred.IsScript() {
				continue
			}
			ret = append(
				ret,
				Purpose{
					Tag:   common.RedeemerTagCert,
					Index: uint32(idx), // #nosec G115
					Info: ScriptInfoCertifying{
						Index:       uint32(idx), // #nosec G115
						Certificate: cert,
						Credential:  cred,
					},
				},
			)
			break
		}
	}
	for idx, withdrawal := range tx.Body.Withdrawals {
		cred, ok := withdrawal.RewardAccount.StakeCredential()
		if !ok || !cred.IsScript() {
			continue
		}
		ret = append(
			ret,
			Purpose{
				Tag:   common.RedeemerTagReward,
				Index: uint32(idx), // #nosec G115
				Info:  ScriptInfoRewarding{StakeCredential: cred},
			},
		)
	}
	return ret
}
