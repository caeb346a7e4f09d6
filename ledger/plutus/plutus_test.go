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

package plutus_test

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/plutigo/syn"
	"github.com/blinklabs-io/utxoledger/cbor"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/plutus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluatorInvalidCacheSize(t *testing.T) {
	_, err := plutus.NewEvaluator(plutus.WithProgramCacheSize(0))
	require.Error(t, err)
}

func TestEvaluateMalformedScript(t *testing.T) {
	evaluator, err := plutus.NewEvaluator()
	require.NoError(t, err)
	testDefs := []common.PlutusScript{
		// Not a CBOR bytestring
		common.PlutusV1Script{0x01, 0x02},
		// Bytestring holding an invalid flat program
		common.PlutusV2Script{0x43, 0xff, 0xff, 0xff},
		common.PlutusV3Script{},
	}
	for idx, script := range testDefs {
		t.Run(fmt.Sprintf("script %d", idx), func(t *testing.T) {
			// Evaluate twice so the second run goes through the program cache lookup
			for range 2 {
				_, err := evaluator.EvaluateScript(
					script,
					[]data.PlutusData{data.NewInteger(big.NewInt(1))},
					common.ExUnits{Memory: 1000, Steps: 1000},
				)
				var evalErr *common.ScriptEvaluationError
				require.ErrorAs(t, err, &evalErr)
				assert.Error(t, evalErr.Reason)
				assert.False(t, plutus.IsBudgetExhausted(err))
			}
		})
	}
}

func TestIsBudgetExhausted(t *testing.T) {
	err := &common.ScriptEvaluationError{
		Reason: fmt.Errorf("%w: out of cpu", common.ErrBudgetExhausted),
	}
	assert.True(t, plutus.IsBudgetExhausted(err))
	assert.False(t, plutus.IsBudgetExhausted(errors.New("out of cpu")))
}

// identityScript builds (lam x x) as an on-chain PlutusV3 script
func identityScript(t *testing.T) common.PlutusV3Script {
	t.Helper()
	program := &syn.Program[syn.DeBruijn]{
		Version: [3]uint32{1, 1, 0},
		Term: &syn.Lambda[syn.DeBruijn]{
			ParameterName: 0,
			Body:          &syn.Var[syn.DeBruijn]{Name: 1},
		},
	}
	flat, err := syn.Encode(program)
	require.NoError(t, err)
	scriptBytes, err := cbor.Encode(flat)
	require.NoError(t, err)
	return common.PlutusV3Script(scriptBytes)
}

func TestEvaluateWithinBudget(t *testing.T) {
	evaluator, err := plutus.NewEvaluator()
	require.NoError(t, err)
	budget := common.ExUnits{Memory: 1_000_000, Steps: 1_000_000_000}
	result, err := evaluator.EvaluateScript(
		identityScript(t),
		[]data.PlutusData{data.NewInteger(big.NewInt(1))},
		budget,
	)
	require.NoError(t, err)
	assert.Positive(t, result.Consumed.Memory)
	assert.Positive(t, result.Consumed.Steps)
	assert.Equal(t, budget.Memory-result.Consumed.Memory, result.Remaining.Memory)
	assert.Equal(t, budget.Steps-result.Consumed.Steps, result.Remaining.Steps)
}

func TestEvaluateBudgetExhausted(t *testing.T) {
	evaluator, err := plutus.NewEvaluator()
	require.NoError(t, err)
	testDefs := []struct {
		name   string
		budget common.ExUnits
	}{
		// A zero budget is not replaced by any default allowance
		{name: "zero", budget: common.ExUnits{}},
		{name: "tiny", budget: common.ExUnits{Memory: 1, Steps: 1}},
		{name: "negative", budget: common.ExUnits{Memory: -1, Steps: -1}},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := evaluator.EvaluateScript(
				identityScript(t),
				[]data.PlutusData{data.NewInteger(big.NewInt(1))},
				testDef.budget,
			)
			var evalErr *common.ScriptEvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.True(t, plutus.IsBudgetExhausted(err))
		})
	}
}
