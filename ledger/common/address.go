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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressHeaderTypeMask    = 0xF0
	AddressHeaderNetworkMask = 0x0F
	AddressHashSize          = 28

	AddressNetworkTestnet = 0
	AddressNetworkMainnet = 1

	AddressTypeKeyKey       = 0b0000
	AddressTypeScriptKey    = 0b0001
	AddressTypeKeyScript    = 0b0010
	AddressTypeScriptScript = 0b0011
	AddressTypeKeyNone      = 0b0110
	AddressTypeScriptNone   = 0b0111
	AddressTypeNoneKey      = 0b1110
	AddressTypeNoneScript   = 0b1111
)

// Address is a Shelley-style address: base (payment + stake), enterprise (payment only)
// or reward (stake only). Pointer and Byron addresses are not supported
type Address struct {
	addressType uint8
	networkId   uint8
	payment     Credential
	stake       Credential
}

func NewBaseAddress(networkId uint8, payment Credential, stake Credential) Address {
	addrType := uint8(AddressTypeKeyKey)
	if payment.IsScript() {
		addrType |= AddressTypeScriptKey
	}
	if stake.IsScript() {
		addrType |= AddressTypeKeyScript
	}
	return Address{
		addressType: addrType,
		networkId:   networkId,
		payment:     payment,
		stake:       stake,
	}
}

func NewEnterpriseAddress(networkId uint8, payment Credential) Address {
	addrType := uint8(AddressTypeKeyNone)
	if payment.IsScript() {
		addrType = AddressTypeScriptNone
	}
	return Address{
		addressType: addrType,
		networkId:   networkId,
		payment:     payment,
	}
}

func NewRewardAddress(networkId uint8, stake Credential) Address {
	addrType := uint8(AddressTypeNoneKey)
	if stake.IsScript() {
		addrType = AddressTypeNoneScript
	}
	return Address{
		addressType: addrType,
		networkId:   networkId,
		stake:       stake,
	}
}

// NewAddress returns an Address based on the provided bech32 address string
func NewAddress(addr string) (Address, error) {
	_, data, err := bech32.DecodeNoLimit(addr)
	if err != nil {
		return Address{}, err
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	return NewAddressFromBytes(decoded)
}

// NewAddressFromBytes returns an Address based on the raw bytes provided
func NewAddressFromBytes(addrBytes []byte) (Address, error) {
	if len(addrBytes) == 0 {
		return Address{}, errors.New("invalid address: empty")
	}
	header := addrBytes[0]
	ret := Address{
		addressType: (header & AddressHeaderTypeMask) >> 4,
		networkId:   header & AddressHeaderNetworkMask,
	}
	payload := addrBytes[1:]
	switch ret.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeKeyScript, AddressTypeScriptScript:
		if len(payload) != 2*AddressHashSize {
			return Address{}, fmt.Errorf("invalid base address length: %d", len(addrBytes))
		}
		ret.payment = addressCredential(ret.addressType&AddressTypeScriptKey != 0, payload[:AddressHashSize])
		ret.stake = addressCredential(ret.addressType&AddressTypeKeyScript != 0, payload[AddressHashSize:])
	case AddressTypeKeyNone, AddressTypeScriptNone:
		if len(payload) != AddressHashSize {
			return Address{}, fmt.Errorf("invalid enterprise address length: %d", len(addrBytes))
		}
		ret.payment = addressCredential(ret.addressType == AddressTypeScriptNone, payload)
	case AddressTypeNoneKey, AddressTypeNoneScript:
		if len(payload) != AddressHashSize {
			return Address{}, fmt.Errorf("invalid reward address length: %d", len(addrBytes))
		}
		ret.stake = addressCredential(ret.addressType == AddressTypeNoneScript, payload)
	default:
		return Address{}, fmt.Errorf("unsupported address type: %#b", ret.addressType)
	}
	return ret, nil
}

func addressCredential(isScript bool, hash []byte) Credential {
	if isScript {
		return NewScriptCredential(NewBlake2b224(hash))
	}
	return NewKeyCredential(NewBlake2b224(hash))
}

func (a Address) Type() uint8 {
	return a.addressType
}

func (a Address) NetworkId() uint8 {
	return a.networkId
}

func (a Address) IsReward() bool {
	return a.addressType == AddressTypeNoneKey || a.addressType == AddressTypeNoneScript
}

// PaymentCredential returns the payment part, if the address has one
func (a Address) PaymentCredential() (Credential, bool) {
	if a.IsReward() {
		return Credential{}, false
	}
	return a.payment, true
}

// StakeCredential returns the staking part, if the address has one
func (a Address) StakeCredential() (Credential, bool) {
	switch a.addressType {
	case AddressTypeKeyNone, AddressTypeScriptNone:
		return Credential{}, false
	}
	return a.stake, true
}

func (a Address) Bytes() []byte {
	ret := []byte{(a.addressType << 4) | (a.networkId & AddressHeaderNetworkMask)}
	if !a.IsReward() {
		ret = append(ret, a.payment.Hash[:]...)
	}
	if _, ok := a.StakeCredential(); ok {
		ret = append(ret, a.stake.Hash[:]...)
	}
	return ret
}

func (a Address) Equal(o Address) bool {
	return bytes.Equal(a.Bytes(), o.Bytes())
}

func (a Address) hrp() string {
	prefix := "addr"
	if a.IsReward() {
		prefix = "stake"
	}
	if a.networkId == AddressNetworkTestnet {
		prefix += "_test"
	}
	return prefix
}

// String returns the bech32 encoding of the address
func (a Address) String() string {
	data := a.Bytes()
	convData, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		panic(fmt.Sprintf("unexpected error converting data to base32: %s", err))
	}
	encoded, err := bech32.Encode(a.hrp(), convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error converting data to bech32: %s", err))
	}
	return encoded
}

func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.Bytes())
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	var tmp []byte
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	addr, err := NewAddressFromBytes(tmp)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	addr, err := NewAddress(tmp)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
