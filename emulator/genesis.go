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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// Genesis describes the initial ledger. InitialFunds maps bech32 addresses to lovelace
type Genesis struct {
	NetworkId      uint8                      `json:"networkId"`
	StartSlot      uint64                     `json:"startSlot"`
	ProtocolParams *common.ProtocolParameters `json:"protocolParams"`
	InitialFunds   map[string]uint64          `json:"initialFunds"`
}

type genesisJson struct {
	NetworkId      uint8             `json:"networkId"`
	StartSlot      uint64            `json:"startSlot"`
	ProtocolParams json.RawMessage   `json:"protocolParams"`
	InitialFunds   map[string]uint64 `json:"initialFunds"`
}

// Protocol parameters missing from the genesis keep their default values
func (g *Genesis) UnmarshalJSON(data []byte) error {
	var tmp genesisJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	g.NetworkId = tmp.NetworkId
	g.StartSlot = tmp.StartSlot
	g.InitialFunds = tmp.InitialFunds
	g.ProtocolParams = common.DefaultProtocolParameters()
	if len(tmp.ProtocolParams) > 0 {
		if err := json.Unmarshal(tmp.ProtocolParams, g.ProtocolParams); err != nil {
			return fmt.Errorf("decode protocol parameters: %w", err)
		}
	}
	return nil
}

func NewGenesisFromReader(r io.Reader) (*Genesis, error) {
	var ret Genesis
	if err := json.NewDecoder(r).Decode(&ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func NewGenesisFromFile(path string) (*Genesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewGenesisFromReader(f)
}

// GenesisUtxoId returns the input of the genesis UTXO funding the address
func GenesisUtxoId(addr common.Address) common.TransactionInput {
	return common.NewTransactionInput(common.Blake2b256Hash(addr.Bytes()), 0)
}

// GenesisUtxos returns one UTXO per initial fund, ordered by input
func (g *Genesis) GenesisUtxos() ([]common.Utxo, error) {
	ret := make([]common.Utxo, 0, len(g.InitialFunds))
	for addrStr, amount := range g.InitialFunds {
		addr, err := common.NewAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis address %s: %w", addrStr, err)
		}
		if addr.NetworkId() != g.NetworkId {
			return nil, fmt.Errorf(
				"genesis address %s is for network %d, expected %d",
				addrStr,
				addr.NetworkId(),
				g.NetworkId,
			)
		}
		ret = append(
			ret,
			common.Utxo{
				Id: GenesisUtxoId(addr),
				Output: common.TransactionOutput{
					Address: addr,
					Amount:  common.NewValue(common.Coin(amount), common.MultiAsset{}),
				},
			},
		)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Id.Compare(ret[j].Id) < 0
	})
	return ret, nil
}
