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

package common_test

import (
	"testing"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	payment := common.NewKeyCredential(common.Blake2b224Hash([]byte("payment")))
	stake := common.NewScriptCredential(common.Blake2b224Hash([]byte("stake")))
	testDefs := []struct {
		name     string
		addr     common.Address
		addrType uint8
		prefix   string
	}{
		{
			name:     "base",
			addr:     common.NewBaseAddress(common.AddressNetworkMainnet, payment, stake),
			addrType: common.AddressTypeKeyScript,
			prefix:   "addr1",
		},
		{
			name:     "enterprise testnet",
			addr:     common.NewEnterpriseAddress(common.AddressNetworkTestnet, payment),
			addrType: common.AddressTypeKeyNone,
			prefix:   "addr_test1",
		},
		{
			name:     "reward",
			addr:     common.NewRewardAddress(common.AddressNetworkMainnet, stake),
			addrType: common.AddressTypeNoneScript,
			prefix:   "stake1",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.addrType, testDef.addr.Type())
			str := testDef.addr.String()
			assert.Contains(t, str, testDef.prefix)
			parsed, err := common.NewAddress(str)
			require.NoError(t, err)
			assert.Equal(t, testDef.addr, parsed)
			data, err := cbor.Encode(testDef.addr)
			require.NoError(t, err)
			var decoded common.Address
			_, err = cbor.Decode(data, &decoded)
			require.NoError(t, err)
			assert.True(t, decoded.Equal(testDef.addr))
		})
	}
}

func TestAddressCredentials(t *testing.T) {
	payment := common.NewKeyCredential(common.Blake2b224Hash([]byte("payment")))
	stake := common.NewKeyCredential(common.Blake2b224Hash([]byte("stake")))
	base := common.NewBaseAddress(common.AddressNetworkMainnet, payment, stake)
	p, ok := base.PaymentCredential()
	require.True(t, ok)
	assert.Equal(t, payment, p)
	s, ok := base.StakeCredential()
	require.True(t, ok)
	assert.Equal(t, stake, s)
	assert.Len(t, base.Bytes(), 57)

	ent := common.NewEnterpriseAddress(common.AddressNetworkMainnet, payment)
	_, ok = ent.StakeCredential()
	assert.False(t, ok)
	assert.Len(t, ent.Bytes(), 29)

	reward := common.NewRewardAddress(common.AddressNetworkMainnet, stake)
	_, ok = reward.PaymentCredential()
	assert.False(t, ok)
	assert.True(t, reward.IsReward())
}

func TestNewAddressFromBytesErrors(t *testing.T) {
	_, err := common.NewAddressFromBytes(nil)
	assert.Error(t, err)
	// Enterprise header with a truncated payload
	_, err = common.NewAddressFromBytes([]byte{0x61, 0x01, 0x02})
	assert.Error(t, err)
	// Pointer addresses are not supported
	_, err = common.NewAddressFromBytes(append([]byte{0x41}, make([]byte, 30)...))
	assert.Error(t, err)
}
