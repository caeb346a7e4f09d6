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

package test_ledger

import (
	"crypto/ed25519"
	"fmt"

	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// Key is a deterministic ed25519 key pair for tests
type Key struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// NewKey derives a key pair from a single seed byte
func NewKey(seed byte) Key {
	seedBytes := make([]byte, ed25519.SeedSize)
	for i := range seedBytes {
		seedBytes[i] = seed
	}
	priv := ed25519.NewKeyFromSeed(seedBytes)
	return Key{
		Private: priv,
		Public:  priv.Public().(ed25519.PublicKey),
	}
}

func (k Key) Hash() common.KeyHash {
	return common.Blake2b224Hash(k.Public)
}

func (k Key) Credential() common.Credential {
	return common.NewKeyCredential(k.Hash())
}

// Address returns an enterprise address paying to the key
func (k Key) Address(networkId uint8) common.Address {
	return common.NewEnterpriseAddress(networkId, k.Credential())
}

// BaseAddress returns an address paying to the key and staking with the stake key
func (k Key) BaseAddress(networkId uint8, stake Key) common.Address {
	return common.NewBaseAddress(networkId, k.Credential(), stake.Credential())
}

func (k Key) RewardAddress(networkId uint8) common.Address {
	return common.NewRewardAddress(networkId, k.Credential())
}

// Witness signs the transaction ID
func (k Key) Witness(tx *common.Transaction) common.VkeyWitness {
	txId := tx.Hash()
	return common.VkeyWitness{
		Vkey:      k.Public,
		Signature: ed25519.Sign(k.Private, txId.Bytes()),
	}
}

// TxId returns a transaction ID filled with the seed byte
func TxId(seed byte) common.TransactionId {
	var ret common.TransactionId
	for i := range ret {
		ret[i] = seed
	}
	return ret
}

func NewUtxo(txSeed byte, idx uint32, addr common.Address, coin common.Coin) common.Utxo {
	return common.Utxo{
		Id: common.NewTransactionInput(TxId(txSeed), idx),
		Output: common.TransactionOutput{
			Address: addr,
			Amount:  common.NewValue(coin, common.MultiAsset{}),
		},
	}
}

// Sign replaces the vkey witnesses of the transaction with signatures from the provided keys
func Sign(tx *common.Transaction, keys ...Key) {
	tx.WitnessSet.VkeyWitnesses = nil
	for _, k := range keys {
		tx.WitnessSet.VkeyWitnesses = append(tx.WitnessSet.VkeyWitnesses, k.Witness(tx))
	}
}

// Balance sets the minimum fee for the transaction and moves the difference in and out of the
// change output, then signs it with the provided keys
func Balance(
	tx *common.Transaction,
	pp *common.ProtocolParameters,
	changeIdx int,
	keys ...Key,
) error {
	for range 5 {
		Sign(tx, keys...)
		txSize, err := tx.Size()
		if err != nil {
			return err
		}
		exUnits, err := tx.WitnessSet.Redeemers.TotalExUnits()
		if err != nil {
			return err
		}
		minFeeUnbounded, err := pp.MinFee(
			uint64(txSize), // #nosec G115
			exUnits,
		)
		if err != nil {
			return err
		}
		minFee, err := minFeeUnbounded.Coin()
		if err != nil {
			return err
		}
		if minFee == tx.Body.Fee {
			return nil
		}
		change := &tx.Body.Outputs[changeIdx].Amount.Coin
		*change = *change + tx.Body.Fee - minFee
		tx.Body.Fee = minFee
	}
	return fmt.Errorf("fee did not converge: %d", tx.Body.Fee)
}
