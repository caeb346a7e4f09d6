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

package mutate

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// InputAlreadySpentError means an input passed validation but was missing when the
// transaction was applied. It signals an inconsistency between validation and application
type InputAlreadySpentError struct {
	Input common.TransactionInput
}

func (e InputAlreadySpentError) Error() string {
	return "input already spent: " + e.Input.String()
}

type OutputAlreadyExistsError struct {
	Output common.TransactionInput
}

func (e OutputAlreadyExistsError) Error() string {
	return "output already exists: " + e.Output.String()
}
