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

package query_test

import (
	"testing"

	test_ledger "github.com/blinklabs-io/utxoledger/internal/test/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetworkId = common.AddressNetworkTestnet

var (
	alice = test_ledger.NewKey(1)
	bob   = test_ledger.NewKey(2)

	aliceAddr = alice.Address(testNetworkId)
	bobAddr   = bob.Address(testNetworkId)

	testPolicy = common.PolicyId(common.NewBlake2b224(make([]byte, 28)))
)

func ada(amount common.Coin) common.Value {
	return common.NewValue(amount*1_000_000, common.MultiAsset{})
}

// Source order: alice 2, bob 3, alice 5, bob 5
func testSource() query.SliceSource {
	return query.SliceSource{
		test_ledger.NewUtxo(0x01, 0, aliceAddr, 2_000_000),
		test_ledger.NewUtxo(0x02, 0, bobAddr, 3_000_000),
		test_ledger.NewUtxo(0x03, 0, aliceAddr, 5_000_000),
		test_ledger.NewUtxo(0x04, 0, bobAddr, 5_000_000),
	}
}

func ids(utxos []common.Utxo) []common.TransactionInput {
	ret := make([]common.TransactionInput, 0, len(utxos))
	for _, utxo := range utxos {
		ret = append(ret, utxo.Id)
	}
	return ret
}

func TestSimple(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.ByAddress(aliceAddr)).Execute()
	assert.Equal(t, ids([]common.Utxo{src[0], src[2]}), ids(ret))
}

func TestAnd(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.ByAddress(bobAddr)).
		And(query.MinCoin(4_000_000)).
		Execute()
	assert.Equal(t, ids([]common.Utxo{src[3]}), ids(ret))
}

func TestMinTotalStopsEarly(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.All()).MinTotal(ada(4)).Execute()
	assert.Equal(t, ids(src[:2]), ids(ret))
}

func TestMinTotalInsufficient(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.ByAddress(aliceAddr)).MinTotal(ada(100)).Execute()
	assert.Equal(t, ids([]common.Utxo{src[0], src[2]}), ids(ret))
}

func TestMinTotalZero(t *testing.T) {
	ret := query.New(testSource(), query.All()).MinTotal(ada(0)).Execute()
	assert.Empty(t, ret)
}

func TestLimit(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.All()).Limit(3).Execute()
	assert.Equal(t, ids(src[:3]), ids(ret))
	// Limit caps the result even if the target is not reached
	ret = query.New(src, query.All()).MinTotal(ada(9)).Limit(2).Execute()
	assert.Equal(t, ids(src[:2]), ids(ret))
	assert.Empty(t, query.New(src, query.All()).Limit(0).Execute())
}

func TestOrBranchesReachTargetAlone(t *testing.T) {
	src := testSource()
	// Pooling both branches would reach 8 ADA with alice 2, bob 3 and alice 5. Alice alone only
	// holds 7 ADA, so bob's branch wins
	ret := query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		MinTotal(ada(8)).
		Execute()
	assert.Equal(t, ids([]common.Utxo{src[1], src[3]}), ids(ret))
	// The first branch to reach the target wins
	ret = query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		MinTotal(ada(7)).
		Execute()
	assert.Equal(t, ids([]common.Utxo{src[0], src[2]}), ids(ret))
}

func TestOrChainedBranchesReachTargetAlone(t *testing.T) {
	carol := test_ledger.NewKey(3)
	carolAddr := carol.Address(testNetworkId)
	src := query.SliceSource{
		test_ledger.NewUtxo(0x01, 0, aliceAddr, 1_000_000),
		test_ledger.NewUtxo(0x02, 0, bobAddr, 1_000_000),
		test_ledger.NewUtxo(0x03, 0, carolAddr, 5_000_000),
	}
	// alice and bob together reach 2 ADA, but neither does alone
	ret := query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		Or(query.ByAddress(carolAddr)).
		MinTotal(ada(2)).
		Execute()
	assert.Equal(t, ids([]common.Utxo{src[2]}), ids(ret))
	// A disjunction below a conjunction is split the same way
	ret = query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		Or(query.ByAddress(carolAddr)).
		And(query.MinCoin(1_000_000)).
		MinTotal(ada(2)).
		Execute()
	assert.Equal(t, ids([]common.Utxo{src[2]}), ids(ret))
	// No single alternative reaches 7 ADA, so all matches are returned
	ret = query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		Or(query.ByAddress(carolAddr)).
		MinTotal(ada(7)).
		Execute()
	assert.Equal(t, ids(src), ids(ret))
}

func TestOrBranchesInsufficient(t *testing.T) {
	src := testSource()
	ret := query.New(src, query.ByAddress(aliceAddr)).
		Or(query.ByAddress(bobAddr)).
		MinTotal(ada(12)).
		Execute()
	assert.Equal(t, ids(src), ids(ret))
}

func TestBuilderIsImmutable(t *testing.T) {
	base := query.New(testSource(), query.ByAddress(aliceAddr))
	limited := base.Limit(1)
	assert.IsType(t, query.Simple{}, base.Node())
	assert.IsType(t, query.Limit{}, limited.Node())
	assert.Len(t, base.Execute(), 2)
	assert.Len(t, limited.Execute(), 1)
}

func TestEvaluateTree(t *testing.T) {
	src := testSource()
	tree := query.Or{
		Left: query.And{
			Left:  query.Simple{Pred: query.ByAddress(aliceAddr)},
			Right: query.Simple{Pred: query.MinCoin(3_000_000)},
		},
		Right: query.Simple{Pred: query.MinCoin(5_000_000)},
	}
	ret := query.Evaluate(tree, src)
	assert.Equal(t, ids(src[2:]), ids(ret))
	assert.Nil(t, query.Evaluate(nil, src))
}

func TestPredicates(t *testing.T) {
	base := test_ledger.NewUtxo(0x05, 0, alice.BaseAddress(testNetworkId, bob), 2_000_000)
	withDatum := test_ledger.NewUtxo(0x06, 0, bobAddr, 2_000_000)
	datumHash := common.NewBlake2b256([]byte("datum"))
	withDatum.Output.DatumHash = &datumHash
	withAsset := test_ledger.NewUtxo(0x07, 0, bobAddr, 2_000_000)
	withAsset.Output.Amount.Assets = common.NewAssetMap(
		common.AssetEntry[common.Coin]{Policy: testPolicy, Name: "token", Amount: 10},
	)
	src := query.SliceSource{base, withDatum, withAsset}

	ret := query.New(src, query.ByPaymentKey(alice.Hash())).Execute()
	require.Len(t, ret, 1)
	assert.Equal(t, base.Id, ret[0].Id)

	ret = query.New(src, query.HasDatum()).Execute()
	require.Len(t, ret, 1)
	assert.Equal(t, withDatum.Id, ret[0].Id)

	ret = query.New(src, query.HasAsset(testPolicy, "token")).Execute()
	require.Len(t, ret, 1)
	assert.Equal(t, withAsset.Id, ret[0].Id)

	assert.Len(t, query.New(src, query.OnlyAda()).Execute(), 2)
	assert.Len(t, query.New(src, query.Not(query.ByAddress(bobAddr))).Execute(), 1)
}
