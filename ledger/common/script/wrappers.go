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
	"math/big"
	"slices"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// ToPlutusData is implemented by types that can be serialized into a script context
type ToPlutusData interface {
	ToPlutusData() data.PlutusData
}

type KeyValuePairs[K ToPlutusData, V ToPlutusData] []KeyValuePair[K, V]

func (k KeyValuePairs[K, V]) ToPlutusData() data.PlutusData {
	pairs := make([][2]data.PlutusData, len(k))
	for i, tmpPair := range k {
		pairs[i] = [2]data.PlutusData{
			tmpPair.Key.ToPlutusData(),
			tmpPair.Value.ToPlutusData(),
		}
	}
	return data.NewMap(pairs)
}

type KeyValuePair[K ToPlutusData, V ToPlutusData] struct {
	Key   K
	Value V
}

type rawData struct {
	data.PlutusData
}

func (r rawData) ToPlutusData() data.PlutusData {
	return r.PlutusData
}

func listData[T any](items []T, f func(T) data.PlutusData) data.PlutusData {
	tmpItems := make([]data.PlutusData, len(items))
	for i, item := range items {
		tmpItems[i] = f(item)
	}
	return data.NewList(tmpItems...)
}

func boolData(v bool) data.PlutusData {
	if v {
		return data.NewConstr(1)
	}
	return data.NewConstr(0)
}

func uintData(v uint64) data.PlutusData {
	return data.NewInteger(new(big.Int).SetUint64(v))
}

func bigData(v common.Unbounded) data.PlutusData {
	return data.NewInteger(v.Big())
}

func justData(v data.PlutusData) data.PlutusData {
	return data.NewConstr(0, v)
}

func nothingData() data.PlutusData {
	return data.NewConstr(1)
}

func credentialData(cred common.Credential) data.PlutusData {
	if cred.IsScript() {
		return data.NewConstr(1, data.NewByteString(cred.Hash.Bytes()))
	}
	return data.NewConstr(0, data.NewByteString(cred.Hash.Bytes()))
}

func stakingCredentialData(cred common.Credential) data.PlutusData {
	return data.NewConstr(0, credentialData(cred))
}

func addressData(addr common.Address) data.PlutusData {
	payment, ok := addr.PaymentCredential()
	if !ok {
		// Reward addresses only carry a stake credential
		payment, _ = addr.StakeCredential()
	}
	stake := nothingData()
	if !addr.IsReward() {
		if stakeCred, ok := addr.StakeCredential(); ok {
			stake = justData(stakingCredentialData(stakeCred))
		}
	}
	return data.NewConstr(0, credentialData(payment), stake)
}

func outRefData(input common.TransactionInput, version uint) data.PlutusData {
	txId := data.NewByteString(input.TxId.Bytes())
	if version < common.ScriptRefTypePlutusV3 {
		txId = data.NewConstr(0, txId)
	}
	return data.NewConstr(0, txId, uintData(uint64(input.OutputIndex)))
}

func tokenMapData[T common.AssetQuantity](
	coin *common.Unbounded,
	assets common.AssetMap[T],
	amount func(T) common.Unbounded,
) data.PlutusData {
	var pairs [][2]data.PlutusData
	if coin != nil {
		pairs = append(
			pairs,
			[2]data.PlutusData{
				data.NewByteString(nil),
				data.NewMap([][2]data.PlutusData{
					{data.NewByteString(nil), bigData(*coin)},
				}),
			},
		)
	}
	var policy *common.PolicyId
	var tokens [][2]data.PlutusData
	flush := func() {
		if policy != nil {
			pairs = append(
				pairs,
				[2]data.PlutusData{
					data.NewByteString(policy.Bytes()),
					data.NewMap(tokens),
				},
			)
		}
	}
	for _, entry := range assets.Entries() {
		if policy == nil || *policy != entry.Policy {
			flush()
			tmpPolicy := entry.Policy
			policy = &tmpPolicy
			tokens = nil
		}
		tokens = append(
			tokens,
			[2]data.PlutusData{
				data.NewByteString(entry.Name.Bytes()),
				bigData(amount(entry.Amount)),
			},
		)
	}
	flush()
	return data.NewMap(pairs)
}

func valueData(v common.Value) data.PlutusData {
	coin := v.Coin.Unbounded()
	return tokenMapData(
		&coin,
		v.Assets,
		func(c common.Coin) common.Unbounded { return c.Unbounded() },
	)
}

func mintData(mint common.MultiAssetUnbounded, version uint) data.PlutusData {
	var coin *common.Unbounded
	if version < common.ScriptRefTypePlutusV3 {
		// Older script versions expect a zero ADA entry in the mint value
		zero := common.NewUnbounded(0)
		coin = &zero
	}
	return tokenMapData(
		coin,
		mint,
		func(u common.Unbounded) common.Unbounded { return u },
	)
}

func outputData(output common.TransactionOutput, version uint) data.PlutusData {
	if version == common.ScriptRefTypePlutusV1 {
		datumHash := nothingData()
		if output.DatumHash != nil {
			datumHash = justData(data.NewByteString(output.DatumHash.Bytes()))
		}
		return data.NewConstr(
			0,
			addressData(output.Address),
			valueData(output.Amount),
			datumHash,
		)
	}
	datum := data.NewConstr(0)
	switch {
	case output.Datum != nil:
		datum = data.NewConstr(2, output.Datum.Data)
	case output.DatumHash != nil:
		datum = data.NewConstr(1, data.NewByteString(output.DatumHash.Bytes()))
	}
	scriptRef := nothingData()
	if output.ScriptRef != nil {
		scriptRef = justData(data.NewByteString(output.ScriptRef.Hash().Bytes()))
	}
	return data.NewConstr(
		0,
		addressData(output.Address),
		valueData(output.Amount),
		datum,
		scriptRef,
	)
}

func inInfoData(utxo common.Utxo, version uint) data.PlutusData {
	return data.NewConstr(
		0,
		outRefData(utxo.Id, version),
		outputData(utxo.Output, version),
	)
}

func drepData(drep common.Drep) data.PlutusData {
	switch drep.Type {
	case common.DrepTypeAddrKeyHash:
		return data.NewConstr(0, credentialData(common.NewKeyCredential(drep.Credential)))
	case common.DrepTypeScriptHash:
		return data.NewConstr(0, credentialData(common.NewScriptCredential(drep.Credential)))
	case common.DrepTypeAbstain:
		return data.NewConstr(1)
	default:
		return data.NewConstr(2)
	}
}

func certificateData(cert common.Certificate, version uint) data.PlutusData {
	if version < common.ScriptRefTypePlutusV3 {
		return certificateDataV1V2(cert)
	}
	switch c := cert.(type) {
	case *common.StakeRegistrationCertificate:
		return data.NewConstr(0, credentialData(c.StakeCredential), nothingData())
	case *common.RegistrationCertificate:
		return data.NewConstr(
			0,
			credentialData(c.StakeCredential),
			justData(bigData(c.Amount.Unbounded())),
		)
	case *common.StakeDeregistrationCertificate:
		return data.NewConstr(1, credentialData(c.StakeCredential), nothingData())
	case *common.DeregistrationCertificate:
		return data.NewConstr(
			1,
			credentialData(c.StakeCredential),
			justData(bigData(c.Amount.Unbounded())),
		)
	case *common.StakeDelegationCertificate:
		return data.NewConstr(
			2,
			credentialData(c.StakeCredential),
			data.NewConstr(0, data.NewByteString(c.PoolKeyHash.Bytes())),
		)
	case *common.VoteDelegationCertificate:
		return data.NewConstr(
			2,
			credentialData(c.StakeCredential),
			data.NewConstr(1, drepData(c.Drep)),
		)
	case *common.RegistrationDrepCertificate:
		return data.NewConstr(
			4,
			credentialData(c.DrepCredential),
			bigData(c.Amount.Unbounded()),
		)
	case *common.DeregistrationDrepCertificate:
		return data.NewConstr(
			6,
			credentialData(c.DrepCredential),
			bigData(c.Amount.Unbounded()),
		)
	case *common.PoolRegistrationCertificate:
		return data.NewConstr(
			7,
			data.NewByteString(c.Operator.Bytes()),
			data.NewByteString(c.VrfKeyHash.Bytes()),
		)
	case *common.PoolRetirementCertificate:
		return data.NewConstr(
			8,
			data.NewByteString(c.PoolKeyHash.Bytes()),
			uintData(c.Epoch),
		)
	}
	return data.NewConstr(0)
}

func certificateDataV1V2(cert common.Certificate) data.PlutusData {
	switch c := cert.(type) {
	case *common.StakeRegistrationCertificate:
		return data.NewConstr(0, stakingCredentialData(c.StakeCredential))
	case *common.RegistrationCertificate:
		return data.NewConstr(0, stakingCredentialData(c.StakeCredential))
	case *common.StakeDeregistrationCertificate:
		return data.NewConstr(1, stakingCredentialData(c.StakeCredential))
	case *common.DeregistrationCertificate:
		return data.NewConstr(1, stakingCredentialData(c.StakeCredential))
	case *common.StakeDelegationCertificate:
		return data.NewConstr(
			2,
			stakingCredentialData(c.StakeCredential),
			data.NewByteString(c.PoolKeyHash.Bytes()),
		)
	case *common.PoolRegistrationCertificate:
		return data.NewConstr(
			3,
			data.NewByteString(c.Operator.Bytes()),
			data.NewByteString(c.VrfKeyHash.Bytes()),
		)
	case *common.PoolRetirementCertificate:
		return data.NewConstr(
			4,
			data.NewByteString(c.PoolKeyHash.Bytes()),
			uintData(c.Epoch),
		)
	}
	// Governance certificates cannot be presented to older script versions
	return data.NewConstr(5)
}

func sortedKeyHashes(hashes []common.KeyHash) []common.KeyHash {
	ret := slices.Clone(hashes)
	slices.SortFunc(
		ret,
		func(a, b common.KeyHash) int {
			return bytes.Compare(a.Bytes(), b.Bytes())
		},
	)
	return ret
}
