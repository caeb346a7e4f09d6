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

package emulator

import (
	"log/slog"

	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/mutate"
	"github.com/blinklabs-io/utxoledger/ledger/rules"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultReceiptCacheSize is the number of accepted transaction receipts kept
const DefaultReceiptCacheSize = 1024

// EmulatorConfig holds configuration for an Emulator
type EmulatorConfig struct {
	Logger *slog.Logger
	// ProtocolParams defaults to common.DefaultProtocolParameters
	ProtocolParams *common.ProtocolParameters
	NetworkId      uint8
	// Slot is the starting slot
	Slot uint64
	// Genesis provides the initial funds. Its network ID, start slot and protocol
	// parameters replace the values above
	Genesis *Genesis
	// GenesisFile is loaded when Genesis is not set
	GenesisFile string
	// Utxos are added to the initial state in addition to the genesis funds
	Utxos      []common.Utxo
	Validators []rules.ValidatorFunc
	Mutators   []mutate.MutatorFunc
	// Evaluator runs Plutus scripts. Transactions with redeemers are rejected without one
	Evaluator common.ScriptEvaluator
	// PromRegistry receives the emulator metrics when set
	PromRegistry     prometheus.Registerer
	ReceiptCacheSize int
}

// DefaultEmulatorConfig returns an EmulatorConfig for a testnet ledger with full validation
func DefaultEmulatorConfig() EmulatorConfig {
	return EmulatorConfig{
		Logger:           slog.Default(),
		NetworkId:        common.AddressNetworkTestnet,
		Validators:       rules.FullValidators,
		Mutators:         mutate.DefaultMutators,
		ReceiptCacheSize: DefaultReceiptCacheSize,
	}
}

// EmulatorOption is a functional option for configuring an Emulator
type EmulatorOption func(*EmulatorConfig)

// WithConfig replaces the whole config. Options applied after it still take effect
func WithConfig(config EmulatorConfig) EmulatorOption {
	return func(c *EmulatorConfig) {
		*c = config
	}
}

func WithLogger(logger *slog.Logger) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Logger = logger
	}
}

func WithProtocolParameters(pparams *common.ProtocolParameters) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.ProtocolParams = pparams
	}
}

func WithNetworkId(networkId uint8) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.NetworkId = networkId
	}
}

func WithSlot(slot uint64) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Slot = slot
	}
}

func WithGenesis(genesis *Genesis) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Genesis = genesis
	}
}

func WithGenesisFile(path string) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.GenesisFile = path
	}
}

func WithUtxos(utxos ...common.Utxo) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Utxos = append(c.Utxos, utxos...)
	}
}

func WithValidators(validators []rules.ValidatorFunc) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Validators = validators
	}
}

func WithMutators(mutators []mutate.MutatorFunc) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Mutators = mutators
	}
}

// WithMinimalValidation only checks inputs, the validity interval and value conservation.
// Signatures, fees and scripts are not checked
func WithMinimalValidation() EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Validators = rules.MinimalValidators
	}
}

func WithEvaluator(evaluator common.ScriptEvaluator) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.Evaluator = evaluator
	}
}

func WithPrometheusRegisterer(registry prometheus.Registerer) EmulatorOption {
	return func(c *EmulatorConfig) {
		c.PromRegistry = registry
	}
}

func WithReceiptCacheSize(size int) EmulatorOption {
	return func(c *EmulatorConfig) {
		if size > 0 {
			c.ReceiptCacheSize = size
		}
	}
}
