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

// Package plutus evaluates Plutus scripts with the plutigo CEK machine
package plutus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/blinklabs-io/plutigo/cek"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/plutigo/syn"
	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	lru "github.com/hashicorp/golang-lru"
)

const (
	DefaultProgramCacheSize = 128
	// Number of machine steps between budget checks
	machineSlippage = 200
)

type Evaluator struct {
	logger    *slog.Logger
	cacheSize int
	programs  *lru.Cache
}

var _ common.ScriptEvaluator = (*Evaluator)(nil)

type EvaluatorOptionFunc func(*Evaluator)

func WithLogger(logger *slog.Logger) EvaluatorOptionFunc {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithProgramCacheSize specifies how many decoded programs are kept, keyed by script hash
func WithProgramCacheSize(size int) EvaluatorOptionFunc {
	return func(e *Evaluator) {
		e.cacheSize = size
	}
}

func NewEvaluator(opts ...EvaluatorOptionFunc) (*Evaluator, error) {
	e := &Evaluator{
		logger:    slog.Default(),
		cacheSize: DefaultProgramCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize <= 0 {
		return nil, fmt.Errorf("invalid program cache size: %d", e.cacheSize)
	}
	cache, err := lru.New(e.cacheSize)
	if err != nil {
		return nil, err
	}
	e.programs = cache
	return e, nil
}

func (e *Evaluator) program(script common.PlutusScript) (*syn.Program[syn.DeBruijn], error) {
	scriptHash := script.Hash()
	if cached, ok := e.programs.Get(scriptHash); ok {
		if program, ok := cached.(*syn.Program[syn.DeBruijn]); ok {
			return program, nil
		}
	}
	// Script bytes are a CBOR bytestring wrapping the flat encoded program
	var innerScript []byte
	if _, err := cbor.Decode(script.RawScriptBytes(), &innerScript); err != nil {
		return nil, fmt.Errorf("decode script bytes: %w", err)
	}
	program, err := syn.Decode[syn.DeBruijn](innerScript)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	e.programs.Add(scriptHash, program)
	return program, nil
}

func budgetExhausted(remaining cek.ExBudget, err error) bool {
	if remaining.Cpu < 0 || remaining.Mem < 0 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "budget")
}

// EvaluateScript applies the arguments to the script in order and runs it within the budget.
// Failures are returned as *common.ScriptEvaluationError
func (e *Evaluator) EvaluateScript(
	script common.PlutusScript,
	args []data.PlutusData,
	budget common.ExUnits,
) (common.EvaluationResult, error) {
	var ret common.EvaluationResult
	program, err := e.program(script)
	if err != nil {
		return ret, &common.ScriptEvaluationError{Reason: err}
	}
	// The redeemer budget is the only allowance, including a zero one
	machineBudget := cek.ExBudget{
		Cpu: budget.Steps,
		Mem: budget.Memory,
	}
	term := program.Term
	for _, arg := range args {
		term = &syn.Apply[syn.DeBruijn]{
			Function: term,
			Argument: &syn.Constant{
				Con: &syn.Data{
					Inner: arg,
				},
			},
		}
	}
	machine := cek.NewMachine[syn.DeBruijn](machineSlippage)
	machine.ExBudget = machineBudget
	_, runErr := machine.Run(term)
	consumed := machineBudget.Sub(&machine.ExBudget)
	ret.Consumed = common.ExUnits{Memory: consumed.Mem, Steps: consumed.Cpu}
	ret.Remaining = common.ExUnits{Memory: machine.ExBudget.Mem, Steps: machine.ExBudget.Cpu}
	ret.Logs = slices.Clone(machine.Logs)
	if runErr != nil {
		reason := runErr
		if budgetExhausted(machine.ExBudget, runErr) {
			reason = fmt.Errorf("%w: %w", common.ErrBudgetExhausted, runErr)
		}
		e.logger.Debug(
			"script evaluation failed",
			"script_hash", script.Hash().String(),
			"error", reason,
		)
		return ret, &common.ScriptEvaluationError{
			Logs:   ret.Logs,
			Reason: reason,
		}
	}
	return ret, nil
}

// IsBudgetExhausted reports whether the evaluation error was caused by the budget running out
func IsBudgetExhausted(err error) bool {
	return errors.Is(err, common.ErrBudgetExhausted)
}
