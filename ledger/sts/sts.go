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

// Package sts composes validators and mutators into the state transition of a single
// transaction
package sts

import (
	"context"
	"log/slog"

	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/mutate"
	"github.com/blinklabs-io/utxoledger/ledger/rules"
	"github.com/blinklabs-io/utxoledger/ledger/state"
)

type Pipeline struct {
	validators []rules.ValidatorFunc
	mutators   []mutate.MutatorFunc
	logger     *slog.Logger
}

type PipelineOptionFunc func(*Pipeline)

// WithLogger specifies the logger used for rule failures
func WithLogger(logger *slog.Logger) PipelineOptionFunc {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns a pipeline running the validators then the mutators in the order given
func New(
	validators []rules.ValidatorFunc,
	mutators []mutate.MutatorFunc,
	opts ...PipelineOptionFunc,
) *Pipeline {
	p := &Pipeline{
		validators: validators,
		mutators:   mutators,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// NewDefault returns a pipeline with the full validator set and the default mutators
func NewDefault(opts ...PipelineOptionFunc) *Pipeline {
	return New(rules.FullValidators, mutate.DefaultMutators, opts...)
}

// Validate runs the validators in order and returns the first failure unchanged
func (p *Pipeline) Validate(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) error {
	for i, validator := range p.validators {
		if err := validator(ctx, st, tx); err != nil {
			p.logger.Debug(
				"transaction failed validation",
				"tx_hash", tx.Hash().String(),
				"rule_index", i,
				"slot", ctx.Slot,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// Run threads the state through the mutators without validating the transaction first
func (p *Pipeline) Run(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	next := st
	for i, mutator := range p.mutators {
		var err error
		next, err = mutator(ctx, next, tx)
		if err != nil {
			p.logger.Debug(
				"transaction failed to apply",
				"tx_hash", tx.Hash().String(),
				"mutator_index", i,
				"error", err,
			)
			return nil, err
		}
	}
	return next, nil
}

// Apply validates the transaction and returns the resulting state. The provided state is
// never modified
func (p *Pipeline) Apply(
	ctx *common.Context,
	st *state.State,
	tx *common.Transaction,
) (*state.State, error) {
	if err := p.Validate(ctx, st, tx); err != nil {
		return nil, err
	}
	next, err := p.Run(ctx, st, tx)
	if err != nil {
		return nil, err
	}
	p.logger.Log(
		context.Background(),
		slog.LevelDebug,
		"applied transaction",
		"tx_hash", tx.Hash().String(),
		"slot", ctx.Slot,
	)
	return next, nil
}
