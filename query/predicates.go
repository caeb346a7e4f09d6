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

package query

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

func All() Predicate {
	return func(common.Utxo) bool {
		return true
	}
}

func ByAddress(addr common.Address) Predicate {
	return func(utxo common.Utxo) bool {
		return utxo.Output.Address == addr
	}
}

// ByPaymentKey matches outputs whose payment credential is the key hash, regardless of the
// stake part of the address
func ByPaymentKey(keyHash common.KeyHash) Predicate {
	return func(utxo common.Utxo) bool {
		cred, ok := utxo.Output.Address.PaymentCredential()
		return ok && !cred.IsScript() && cred.Hash == keyHash
	}
}

func ByPaymentScript(scriptHash common.ScriptHash) Predicate {
	return func(utxo common.Utxo) bool {
		cred, ok := utxo.Output.Address.PaymentCredential()
		return ok && cred.IsScript() && cred.Hash == scriptHash
	}
}

func HasAsset(policy common.PolicyId, name common.AssetName) Predicate {
	return func(utxo common.Utxo) bool {
		return utxo.Output.Amount.Assets.Get(policy, name) > 0
	}
}

func MinCoin(amount common.Coin) Predicate {
	return func(utxo common.Utxo) bool {
		return utxo.Output.Amount.Coin >= amount
	}
}

// HasDatum matches outputs carrying an inline datum or a datum hash
func HasDatum() Predicate {
	return func(utxo common.Utxo) bool {
		return utxo.Output.Datum != nil || utxo.Output.DatumHash != nil
	}
}

// OnlyAda matches outputs without native assets
func OnlyAda() Predicate {
	return func(utxo common.Utxo) bool {
		return utxo.Output.Amount.Assets.IsEmpty()
	}
}

func Not(pred Predicate) Predicate {
	return func(utxo common.Utxo) bool {
		return !pred(utxo)
	}
}
