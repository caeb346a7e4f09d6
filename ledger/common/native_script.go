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
	"fmt"

	"github.com/blinklabs-io/utxoledger/cbor"
)

const (
	NativeScriptTypePubkey           = 0
	NativeScriptTypeAll              = 1
	NativeScriptTypeAny              = 2
	NativeScriptTypeNofK             = 3
	NativeScriptTypeInvalidBefore    = 4
	NativeScriptTypeInvalidHereafter = 5
)

// NativeScript is a multi-signature/timelock script evaluated directly by the ledger
type NativeScript struct {
	cbor.DecodeStoreCbor
	Type     uint
	KeyHash  KeyHash
	Scripts  []NativeScript
	Required uint
	Slot     uint64
}

func NewNativeScriptPubkey(keyHash KeyHash) NativeScript {
	return NativeScript{Type: NativeScriptTypePubkey, KeyHash: keyHash}
}

func NewNativeScriptAll(scripts ...NativeScript) NativeScript {
	return NativeScript{Type: NativeScriptTypeAll, Scripts: scripts}
}

func NewNativeScriptAny(scripts ...NativeScript) NativeScript {
	return NativeScript{Type: NativeScriptTypeAny, Scripts: scripts}
}

func NewNativeScriptNofK(required uint, scripts ...NativeScript) NativeScript {
	return NativeScript{Type: NativeScriptTypeNofK, Required: required, Scripts: scripts}
}

func NewNativeScriptInvalidBefore(slot uint64) NativeScript {
	return NativeScript{Type: NativeScriptTypeInvalidBefore, Slot: slot}
}

func NewNativeScriptInvalidHereafter(slot uint64) NativeScript {
	return NativeScript{Type: NativeScriptTypeInvalidHereafter, Slot: slot}
}

func (NativeScript) isScript() {}

func (NativeScript) Language() uint {
	return ScriptRefTypeNativeScript
}

func (n NativeScript) RawScriptBytes() []byte {
	data, err := n.MarshalCBOR()
	if err != nil {
		return nil
	}
	return data
}

func (n NativeScript) Hash() ScriptHash {
	return scriptHash(ScriptRefTypeNativeScript, n.RawScriptBytes())
}

func (n NativeScript) MarshalCBOR() ([]byte, error) {
	if n.Cbor() != nil {
		return n.Cbor(), nil
	}
	var tmp []any
	switch n.Type {
	case NativeScriptTypePubkey:
		tmp = []any{n.Type, n.KeyHash}
	case NativeScriptTypeAll, NativeScriptTypeAny:
		tmp = []any{n.Type, nativeScriptList(n.Scripts)}
	case NativeScriptTypeNofK:
		tmp = []any{n.Type, n.Required, nativeScriptList(n.Scripts)}
	case NativeScriptTypeInvalidBefore, NativeScriptTypeInvalidHereafter:
		tmp = []any{n.Type, n.Slot}
	default:
		return nil, fmt.Errorf("unknown native script type: %d", n.Type)
	}
	return cbor.Encode(tmp)
}

func nativeScriptList(scripts []NativeScript) []NativeScript {
	if scripts == nil {
		return []NativeScript{}
	}
	return scripts
}

func (n *NativeScript) UnmarshalCBOR(data []byte) error {
	var tmp []cbor.RawMessage
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	if len(tmp) < 2 {
		return fmt.Errorf("invalid native script: expected at least 2 items, got %d", len(tmp))
	}
	var ret NativeScript
	if _, err := cbor.Decode(tmp[0], &ret.Type); err != nil {
		return err
	}
	var err error
	switch ret.Type {
	case NativeScriptTypePubkey:
		_, err = cbor.Decode(tmp[1], &ret.KeyHash)
	case NativeScriptTypeAll, NativeScriptTypeAny:
		_, err = cbor.Decode(tmp[1], &ret.Scripts)
	case NativeScriptTypeNofK:
		if len(tmp) != 3 {
			return fmt.Errorf("invalid n-of-k native script: expected 3 items, got %d", len(tmp))
		}
		if _, err = cbor.Decode(tmp[1], &ret.Required); err == nil {
			_, err = cbor.Decode(tmp[2], &ret.Scripts)
		}
	case NativeScriptTypeInvalidBefore, NativeScriptTypeInvalidHereafter:
		_, err = cbor.Decode(tmp[1], &ret.Slot)
	default:
		return fmt.Errorf("unknown native script type: %d", ret.Type)
	}
	if err != nil {
		return err
	}
	*n = ret
	n.SetCbor(data)
	return nil
}

// Evaluate checks the script against the set of key hashes that signed the transaction and
// the transaction validity interval. Timelocks are judged against the interval rather than the
// current slot, so a nil bound never satisfies the corresponding timelock
func (n NativeScript) Evaluate(
	validityStart *uint64,
	ttl *uint64,
	signers map[KeyHash]struct{},
) bool {
	switch n.Type {
	case NativeScriptTypePubkey:
		_, ok := signers[n.KeyHash]
		return ok
	case NativeScriptTypeAll:
		for _, s := range n.Scripts {
			if !s.Evaluate(validityStart, ttl, signers) {
				return false
			}
		}
		return true
	case NativeScriptTypeAny:
		for _, s := range n.Scripts {
			if s.Evaluate(validityStart, ttl, signers) {
				return true
			}
		}
		return false
	case NativeScriptTypeNofK:
		var count uint
		for _, s := range n.Scripts {
			if s.Evaluate(validityStart, ttl, signers) {
				count++
				if count >= n.Required {
					return true
				}
			}
		}
		return count >= n.Required
	case NativeScriptTypeInvalidBefore:
		return validityStart != nil && *validityStart >= n.Slot
	case NativeScriptTypeInvalidHereafter:
		return ttl != nil && *ttl <= n.Slot
	}
	return false
}

// KeyHashes returns every key hash referenced by the script
func (n NativeScript) KeyHashes() []KeyHash {
	var ret []KeyHash
	switch n.Type {
	case NativeScriptTypePubkey:
		ret = append(ret, n.KeyHash)
	case NativeScriptTypeAll, NativeScriptTypeAny, NativeScriptTypeNofK:
		for _, s := range n.Scripts {
			ret = append(ret, s.KeyHashes()...)
		}
	}
	return ret
}
