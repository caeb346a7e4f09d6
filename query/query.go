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

// Package query implements composable UTXO queries as a small syntax tree with a single
// interpreter
package query

import (
	"github.com/blinklabs-io/utxoledger/ledger/common"
)

// Predicate reports whether a UTXO matches
type Predicate func(common.Utxo) bool

// Node is a query syntax tree node
type Node interface {
	isNode()
}

type Simple struct {
	Pred Predicate
}

type And struct {
	Left  Node
	Right Node
}

type Or struct {
	Left  Node
	Right Node
}

// MinTotal stops the evaluation of Inner once the accumulated value reaches Amount
type MinTotal struct {
	Inner  Node
	Amount common.Value
}

// Limit caps the number of results of Inner
type Limit struct {
	Inner Node
	N     int
}

func (Simple) isNode()   {}
func (And) isNode()      {}
func (Or) isNode()       {}
func (MinTotal) isNode() {}
func (Limit) isNode()    {}

// Source provides UTXOs in a fixed order
type Source interface {
	Ascend(fn func(common.Utxo) bool)
}

// SliceSource is a Source over an already ordered slice
type SliceSource []common.Utxo

func (s SliceSource) Ascend(fn func(common.Utxo) bool) {
	for _, utxo := range s {
		if !fn(utxo) {
			return
		}
	}
}

// Query is a lazily evaluated query bound to a source. Builder methods return a new Query
// and leave the receiver unchanged
type Query struct {
	source Source
	root   Node
}

func New(source Source, pred Predicate) *Query {
	return &Query{
		source: source,
		root:   Simple{Pred: pred},
	}
}

// Node returns the syntax tree built so far
func (q *Query) Node() Node {
	return q.root
}

func (q *Query) with(root Node) *Query {
	return &Query{source: q.source, root: root}
}

func (q *Query) And(pred Predicate) *Query {
	return q.with(And{Left: q.root, Right: Simple{Pred: pred}})
}

func (q *Query) Or(pred Predicate) *Query {
	return q.with(Or{Left: q.root, Right: Simple{Pred: pred}})
}

// AndQuery combines the query with another query tree. The source of other is ignored
func (q *Query) AndQuery(other *Query) *Query {
	return q.with(And{Left: q.root, Right: other.root})
}

// OrQuery combines the query with another query tree. The source of other is ignored
func (q *Query) OrQuery(other *Query) *Query {
	return q.with(Or{Left: q.root, Right: other.root})
}

func (q *Query) MinTotal(amount common.Value) *Query {
	return q.with(MinTotal{Inner: q.root, Amount: amount})
}

func (q *Query) Limit(n int) *Query {
	return q.with(Limit{Inner: q.root, N: n})
}

// Execute evaluates the query against its source
func (q *Query) Execute() []common.Utxo {
	return Evaluate(q.root, q.source)
}
