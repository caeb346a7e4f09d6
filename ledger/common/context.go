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
	"strings"

	"github.com/blinklabs-io/plutigo/data"
)

// Context is the per-submission environment handed to validators and mutators. It is
// built fresh for each submission and never modified afterwards
type Context struct {
	Slot           uint64
	ProtocolParams *ProtocolParameters
	NetworkId      uint8
	Evaluator      ScriptEvaluator
}

// NewContext builds a context holding its own copy of the protocol parameters
func NewContext(
	slot uint64,
	pp *ProtocolParameters,
	networkId uint8,
	evaluator ScriptEvaluator,
) *Context {
	if pp == nil {
		pp = DefaultProtocolParameters()
	}
	return &Context{
		Slot:           slot,
		ProtocolParams: pp.Clone(),
		NetworkId:      networkId,
		Evaluator:      evaluator,
	}
}

// ScriptEvaluator runs a Plutus script against its arguments within an execution budget
type ScriptEvaluator interface {
	EvaluateScript(script PlutusScript, args []data.PlutusData, budget ExUnits) (EvaluationResult, error)
}

type EvaluationResult struct {
	Logs      []string
	Consumed  ExUnits
	Remaining ExUnits
}

// ErrBudgetExhausted is wrapped by evaluation errors caused by running out of budget
var ErrBudgetExhausted = errors.New("execution budget exhausted")

// ScriptEvaluationError is returned by a ScriptEvaluator when the script fails
type ScriptEvaluationError struct {
	Logs   []string
	Reason error
}

func (e *ScriptEvaluationError) Error() string {
	msg := "script evaluation failed"
	if e.Reason != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if len(e.Logs) > 0 {
		msg = fmt.Sprintf("%s (logs: %s)", msg, strings.Join(e.Logs, "; "))
	}
	return msg
}

func (e *ScriptEvaluationError) Unwrap() error {
	return e.Reason
}
