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
	CredentialTypeKeyHash    = 0
	CredentialTypeScriptHash = 1
)

// Credential identifies the owner of funds or a stake account by key hash or script hash
type Credential struct {
	cbor.StructAsArray
	CredType uint
	Hash     Blake2b224
}

func NewKeyCredential(keyHash KeyHash) Credential {
	return Credential{CredType: CredentialTypeKeyHash, Hash: keyHash}
}

func NewScriptCredential(scriptHash ScriptHash) Credential {
	return Credential{CredType: CredentialTypeScriptHash, Hash: scriptHash}
}

func (c Credential) IsScript() bool {
	return c.CredType == CredentialTypeScriptHash
}

func (c Credential) String() string {
	if c.IsScript() {
		return fmt.Sprintf("script:%s", c.Hash.String())
	}
	return fmt.Sprintf("key:%s", c.Hash.String())
}
