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

package state_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUtxo(seed byte, idx uint32, addr common.Address, amount common.Coin) common.Utxo {
	return common.Utxo{
		Id: common.NewTransactionInput(common.NewBlake2b256([]byte{seed}), idx),
		Output: common.TransactionOutput{
			Address: addr,
			Amount:  common.NewValue(amount, common.MultiAsset{}),
		},
	}
}

var (
	testAddrA = common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(common.Blake2b224Hash([]byte("a"))),
	)
	testAddrB = common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(common.Blake2b224Hash([]byte("b"))),
	)
)

func TestUtxosOrdered(t *testing.T) {
	s, err := state.NewFromUtxos(
		[]common.Utxo{
			testUtxo(0x03, 0, testAddrA, 3),
			testUtxo(0x01, 1, testAddrB, 2),
			testUtxo(0x01, 0, testAddrA, 1),
		},
	)
	require.NoError(t, err)
	utxos := s.Utxos()
	require.Len(t, utxos, 3)
	assert.Equal(t, common.Coin(1), utxos[0].Output.Amount.Coin)
	assert.Equal(t, common.Coin(2), utxos[1].Output.Amount.Coin)
	assert.Equal(t, common.Coin(3), utxos[2].Output.Amount.Coin)
	byAddr := s.UtxosByAddress(testAddrA)
	require.Len(t, byAddr, 2)
	assert.Equal(t, common.Coin(1), byAddr[0].Output.Amount.Coin)
}

func TestDuplicateUtxoRejected(t *testing.T) {
	_, err := state.NewFromUtxos(
		[]common.Utxo{
			testUtxo(0x01, 0, testAddrA, 1),
			testUtxo(0x01, 0, testAddrB, 2),
		},
	)
	assert.Error(t, err)
}

func TestCloneIsolation(t *testing.T) {
	orig, err := state.NewFromUtxos([]common.Utxo{testUtxo(0x01, 0, testAddrA, 1)})
	require.NoError(t, err)
	cred := common.NewKeyCredential(common.Blake2b224Hash([]byte("stake")))

	clone := orig.Clone()
	_, err = clone.RemoveUtxo(common.NewTransactionInput(common.NewBlake2b256([]byte{0x01}), 0))
	require.NoError(t, err)
	require.NoError(t, clone.AddUtxo(testUtxo(0x02, 0, testAddrB, 5)))
	clone.RegisterStake(cred, 2000000)

	assert.Equal(t, 1, orig.UtxoCount())
	assert.True(t, orig.HasUtxo(common.NewTransactionInput(common.NewBlake2b256([]byte{0x01}), 0)))
	_, registered := orig.StakeRegistration(cred)
	assert.False(t, registered)

	assert.Equal(t, 1, clone.UtxoCount())
	deposit, registered := clone.StakeRegistration(cred)
	assert.True(t, registered)
	assert.Equal(t, common.Coin(2000000), deposit)
}

func TestUtxoByIdMissing(t *testing.T) {
	s := state.New()
	_, err := s.UtxoById(common.NewTransactionInput(common.NewBlake2b256([]byte{0x09}), 0))
	assert.True(t, errors.Is(err, common.ErrUtxoNotFound))
	_, err = s.RemoveUtxo(common.NewTransactionInput(common.NewBlake2b256([]byte{0x09}), 0))
	assert.True(t, errors.Is(err, common.ErrUtxoNotFound))
}

func TestStakeBookkeeping(t *testing.T) {
	s := state.New()
	cred := common.NewKeyCredential(common.Blake2b224Hash([]byte("stake")))
	pool := common.Blake2b224Hash([]byte("pool"))
	assert.Error(t, s.SetRewardBalance(cred, 10))
	s.RegisterStake(cred, 2000000)
	require.NoError(t, s.SetRewardBalance(cred, 10))
	s.DelegateStake(cred, pool)
	account, ok := s.StakeAccount(cred)
	require.True(t, ok)
	require.NotNil(t, account.Pool)
	assert.Equal(t, pool, *account.Pool)
	reward, ok := s.RewardBalance(cred)
	require.True(t, ok)
	assert.Equal(t, common.Coin(10), reward)

	s.RegisterPool(common.PoolRegistrationCertificate{Operator: pool}, 500)
	s.RetirePool(pool, 10)
	poolState, ok := s.Pool(pool)
	require.True(t, ok)
	require.NotNil(t, poolState.RetiringEpoch)
	// Re-registration cancels retirement and keeps the original deposit
	s.RegisterPool(common.PoolRegistrationCertificate{Operator: pool}, 500)
	poolState, _ = s.Pool(pool)
	assert.Nil(t, poolState.RetiringEpoch)
	assert.Equal(t, common.Coin(500), poolState.Deposit)

	s.DeregisterStake(cred)
	_, ok = s.StakeRegistration(cred)
	assert.False(t, ok)
}
