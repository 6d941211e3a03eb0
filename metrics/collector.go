// Package metrics
//
// @author: xwc1125
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pbftProtocol "github.com/xaviwho/poa-pow-sims/protocol"
)

const namespace = "pbft"

// Collector 将记录导出为prometheus指标
type Collector struct {
	rounds        *prometheus.CounterVec
	roundLatency  prometheus.Histogram
	finality      prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	participants  *prometheus.GaugeVec
	messages      *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	byzantine     *prometheus.CounterVec
	viewChanges   prometheus.Counter
	viewDuration  prometheus.Histogram
	view          prometheus.Gauge
	height        prometheus.Gauge
}

var latencyBuckets = []float64{100, 200, 400, 800, 1000, 1500, 2000, 4000, 8000}

// NewCollector 创建并注册指标
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Consensus rounds grouped by outcome",
		}, []string{"outcome"}),
		roundLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_milliseconds",
			Help:      "Modelled duration of each round",
			Buckets:   latencyBuckets,
		}),
		finality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "finality_milliseconds",
			Help:      "Finality time of committed work items",
			Buckets:   latencyBuckets,
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_milliseconds",
			Help:      "Modelled duration of each phase attempt",
			Buckets:   latencyBuckets,
		}, []string{"phase"}),
		participants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_participants",
			Help:      "Participants counted in the last attempt of each phase",
		}, []string{"phase"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Accounted protocol messages grouped by phase",
		}, []string{"phase"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_bytes_total",
			Help:      "Accounted protocol bytes grouped by phase",
		}, []string{"phase"}),
		byzantine: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "byzantine_events_total",
			Help:      "Triggered faults grouped by phase and type",
		}, []string{"phase", "type"}),
		viewChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_changes_total",
			Help:      "Completed view changes",
		}),
		viewDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_change_duration_milliseconds",
			Help:      "Modelled duration of each view change",
			Buckets:   latencyBuckets,
		}),
		view: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view",
			Help:      "Current view",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "height",
			Help:      "Latest processed height",
		}),
	}

	reg.MustRegister(
		c.rounds,
		c.roundLatency,
		c.finality,
		c.phaseDuration,
		c.participants,
		c.messages,
		c.bytes,
		c.byzantine,
		c.viewChanges,
		c.viewDuration,
		c.view,
		c.height,
	)
	return c
}

// Handler 返回/metrics的http处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func phaseLabel(phase pbftProtocol.Phase) string {
	return strings.ToLower(phase.String())
}

func (c *Collector) observePhase(record pbftProtocol.PhaseRecord) {
	label := phaseLabel(record.Phase)
	c.phaseDuration.WithLabelValues(label).Observe(float64(record.Duration))
	c.participants.WithLabelValues(label).Set(float64(record.ParticipantCount))
}

func (c *Collector) observeNetwork(msg pbftProtocol.NetworkMessage) {
	label := phaseLabel(msg.Phase)
	c.messages.WithLabelValues(label).Add(float64(msg.MessageCount))
	c.bytes.WithLabelValues(label).Add(float64(msg.TotalBytes))
}

func (c *Collector) observeByzantine(event pbftProtocol.ByzantineEvent) {
	c.byzantine.WithLabelValues(phaseLabel(event.Phase), event.FailureType.String()).Inc()
}

func (c *Collector) observeViewChange(record pbftProtocol.ViewChangeRecord) {
	c.viewChanges.Inc()
	c.viewDuration.Observe(float64(record.Duration))
	c.view.Set(float64(record.NewView))
}

func (c *Collector) observeBlock(record pbftProtocol.BlockRecord) {
	outcome := "committed"
	if !record.Success {
		outcome = "failed"
	}
	c.rounds.WithLabelValues(outcome).Inc()
	c.roundLatency.Observe(float64(record.TotalTime))
	c.height.Set(float64(record.BlockHeight))
}

func (c *Collector) observeFinality(record pbftProtocol.FinalityRecord) {
	c.finality.Observe(float64(record.FinalityTime))
}
