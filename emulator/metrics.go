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
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "utxoledger"

// Metrics is a snapshot of the emulator counters
type Metrics struct {
	TxSubmitted uint64
	TxAccepted  uint64
	TxRejected  uint64
	UtxoCount   int
	Slot        uint64
}

// emulatorMetrics tracks submissions with atomic counters, mirrored to prometheus when a
// registerer is configured
type emulatorMetrics struct {
	txSubmitted atomic.Uint64
	txAccepted  atomic.Uint64
	txRejected  atomic.Uint64

	promSubmitted prometheus.Counter
	promAccepted  prometheus.Counter
	promRejected  *prometheus.CounterVec
	promUtxoCount prometheus.Gauge
	promSlot      prometheus.Gauge
}

func newEmulatorMetrics(registry prometheus.Registerer) (*emulatorMetrics, error) {
	m := &emulatorMetrics{}
	if registry == nil {
		return m, nil
	}
	m.promSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tx_submitted_total",
		Help:      "number of transactions submitted",
	})
	m.promAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tx_accepted_total",
		Help:      "number of transactions applied to the ledger",
	})
	m.promRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tx_rejected_total",
			Help:      "number of rejected transactions by error kind",
		}, []string{
			"kind",
		})
	m.promUtxoCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "utxo_count",
		Help:      "current number of UTXOs",
	})
	m.promSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "slot",
		Help:      "current slot",
	})
	for _, collector := range []prometheus.Collector{
		m.promSubmitted,
		m.promAccepted,
		m.promRejected,
		m.promUtxoCount,
		m.promSlot,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *emulatorMetrics) recordSubmit() {
	m.txSubmitted.Add(1)
	if m.promSubmitted != nil {
		m.promSubmitted.Inc()
	}
}

func (m *emulatorMetrics) recordAccept(utxoCount int) {
	m.txAccepted.Add(1)
	if m.promAccepted != nil {
		m.promAccepted.Inc()
		m.promUtxoCount.Set(float64(utxoCount))
	}
}

func (m *emulatorMetrics) recordReject(kind string) {
	m.txRejected.Add(1)
	if m.promRejected != nil {
		m.promRejected.WithLabelValues(kind).Inc()
	}
}

func (m *emulatorMetrics) setUtxoCount(utxoCount int) {
	if m.promUtxoCount != nil {
		m.promUtxoCount.Set(float64(utxoCount))
	}
}

func (m *emulatorMetrics) setSlot(slot uint64) {
	if m.promSlot != nil {
		m.promSlot.Set(float64(slot))
	}
}
