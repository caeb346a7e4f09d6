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
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/utxoledger/cbor"
)

const (
	ScriptRefTypeNativeScript = 0
	ScriptRefTypePlutusV1     = 1
	ScriptRefTypePlutusV2     = 2
	ScriptRefTypePlutusV3     = 3
)

type Script interface {
	isScript()
	Hash() ScriptHash
	RawScriptBytes() []byte
	Language() uint
}

// PlutusScript is a script evaluated by the external script evaluator
type PlutusScript interface {
	Script
	isPlutusScript()
}

func scriptHash(lang uint, raw []byte) ScriptHash {
	return Blake2b224Hash(slices.Concat([]byte{byte(lang)}, raw))
}

type PlutusV1Script []byte

func (PlutusV1Script) isScript()       {}
func (PlutusV1Script) isPlutusScript() {}

func (s PlutusV1Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV1, s)
}

func (s PlutusV1Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (PlutusV1Script) Language() uint {
	return ScriptRefTypePlutusV1
}

type PlutusV2Script []byte

func (PlutusV2Script) isScript()       {}
func (PlutusV2Script) isPlutusScript() {}

func (s PlutusV2Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV2, s)
}

func (s PlutusV2Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (PlutusV2Script) Language() uint {
	return ScriptRefTypePlutusV2
}

type PlutusV3Script []byte

func (PlutusV3Script) isScript()       {}
func (PlutusV3Script) isPlutusScript() {}

func (s PlutusV3Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV3, s)
}

func (s PlutusV3Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (PlutusV3Script) Language() uint {
	return ScriptRefTypePlutusV3
}

// ScriptRef is a script attached to an output, encoded as tag 24 wrapped [type, script]
type ScriptRef struct {
	Script Script
}

func (s ScriptRef) MarshalCBOR() ([]byte, error) {
	if s.Script == nil {
		return nil, errors.New("script reference has no script")
	}
	var scriptValue any
	switch v := s.Script.(type) {
	case *NativeScript:
		scriptValue = v
	case NativeScript:
		scriptValue = &v
	default:
		scriptValue = s.Script.RawScriptBytes()
	}
	return cbor.EncodeEmbedded([]any{s.Script.Language(), scriptValue})
}

func (s *ScriptRef) UnmarshalCBOR(data []byte) error {
	inner, err := cbor.DecodeEmbedded(data)
	if err != nil {
		return err
	}
	var tmp []cbor.RawMessage
	if _, err := cbor.Decode(inner, &tmp); err != nil {
		return err
	}
	if len(tmp) != 2 {
		return fmt.Errorf("invalid script reference: expected 2 items, got %d", len(tmp))
	}
	var lang uint
	if _, err := cbor.Decode(tmp[0], &lang); err != nil {
		return err
	}
	switch lang {
	case ScriptRefTypeNativeScript:
		var ns NativeScript
		if _, err := cbor.Decode(tmp[1], &ns); err != nil {
			return err
		}
		s.Script = &ns
		return nil
	case ScriptRefTypePlutusV1, ScriptRefTypePlutusV2, ScriptRefTypePlutusV3:
		var raw []byte
		if _, err := cbor.Decode(tmp[1], &raw); err != nil {
			return err
		}
		switch lang {
		case ScriptRefTypePlutusV1:
			s.Script = PlutusV1Script(raw)
		case ScriptRefTypePlutusV2:
			s.Script = PlutusV2Script(raw)
		default:
			s.Script = PlutusV3Script(raw)
		}
		return nil
	default:
		return fmt.Errorf("unknown script type: %d", lang)
	}
}
