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

package query

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

type bounds struct {
	target *common.ValueUnbounded
	limit  int
}

// Upper bound on the alternatives tried one by one under a MinTotal. Larger disjunctions
// are scanned as a whole
const maxAlternatives = 64

// Evaluate runs the query tree against the source. UTXOs are visited once in source order.
// Under a MinTotal, scanning stops as soon as the accumulated value reaches the target, and a
// disjunction tries each of its alternatives on its own before falling back to all of its
// matches. A Limit always caps the result count
func Evaluate(node Node, source Source) []common.Utxo {
	if node == nil {
		return nil
	}
	ret, _ := evaluate(node, source, bounds{})
	return ret
}

func evaluate(node Node, source Source, b bounds) ([]common.Utxo, bool) {
	switch n := node.(type) {
	case MinTotal:
		// The outermost target wins
		if b.target == nil {
			target := n.Amount.Unbounded()
			b.target = &target
		}
		return evaluate(n.Inner, source, b)
	case Limit:
		if b.limit == 0 || (n.N > 0 && n.N < b.limit) {
			b.limit = n.N
		}
		if n.N <= 0 {
			return nil, false
		}
		return evaluate(n.Inner, source, b)
	case Or, And:
		if b.target == nil {
			break
		}
		alts := alternatives(node)
		if len(alts) < 2 || len(alts) > maxAlternatives {
			break
		}
		for _, alt := range alts {
			if ret, reached := evaluate(alt, source, b); reached {
				return ret, true
			}
		}
	}
	return scan(node, source, b)
}

// alternatives flattens nested disjunctions into a list, distributing conjunctions over
// them, so that a or b or c yields [a b c] and (a or b) and c yields [a&c b&c]. Modifier
// nodes are kept whole
func alternatives(node Node) []Node {
	switch n := node.(type) {
	case Or:
		left := alternatives(n.Left)
		right := alternatives(n.Right)
		return append(left[:len(left):len(left)], right...)
	case And:
		left := alternatives(n.Left)
		right := alternatives(n.Right)
		if len(left)*len(right) == 1 || len(left)*len(right) > maxAlternatives {
			return []Node{n}
		}
		ret := make([]Node, 0, len(left)*len(right))
		for _, l := range left {
			for _, r := range right {
				ret = append(ret, And{Left: l, Right: r})
			}
		}
		return ret
	default:
		return []Node{node}
	}
}

func scan(node Node, source Source, b bounds) ([]common.Utxo, bool) {
	var ret []common.Utxo
	var total common.ValueUnbounded
	if b.target != nil && total.GreaterOrEqual(*b.target) {
		return nil, true
	}
	reached := false
	source.Ascend(func(utxo common.Utxo) bool {
		if !matches(node, utxo) {
			return true
		}
		ret = append(ret, utxo)
		if b.target != nil {
			total = total.Add(utxo.Output.Amount.Unbounded())
			if total.GreaterOrEqual(*b.target) {
				reached = true
				return false
			}
		}
		return b.limit == 0 || len(ret) < b.limit
	})
	return ret, reached
}

// matches evaluates the filtering part of a node. Accumulation modifiers nested below a
// conjunction or disjunction only contribute their predicate
func matches(node Node, utxo common.Utxo) bool {
	switch n := node.(type) {
	case Simple:
		return n.Pred == nil || n.Pred(utxo)
	case And:
		return matches(n.Left, utxo) && matches(n.Right, utxo)
	case Or:
		return matches(n.Left, utxo) || matches(n.Right, utxo)
	case MinTotal:
		return matches(n.Inner, utxo)
	case Limit:
		return matches(n.Inner, utxo)
	default:
		return false
	}
}
