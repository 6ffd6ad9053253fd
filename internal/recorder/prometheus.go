package recorder

import (
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"AMMSim/internal/model"
)

// PromRecorder mirrors the latest tick into Prometheus gauges. On Close the
// registry is written to a node-exporter textfile when a path is set.
type PromRecorder struct {
	registry *prometheus.Registry
	textfile string

	tick          prometheus.Gauge
	poolPrice     prometheus.Gauge
	externalPrice prometheus.Gauge
	reserve       *prometheus.GaugeVec
	agentBalance  *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	trackingError prometheus.Gauge
	kDrift        prometheus.Gauge
}

// NewPromRecorder registers the simulation gauges under namespace on a
// private registry.
func NewPromRecorder(namespace, textfile string) *PromRecorder {
	if namespace == "" {
		namespace = "ammsim"
	}
	reg := prometheus.NewRegistry()
	p := &PromRecorder{
		registry: reg,
		textfile: textfile,
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick",
			Help:      "Most recently recorded tick",
		}),
		poolPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_price",
			Help:      "Pool DAI price of one ETH",
		}),
		externalPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "external_price",
			Help:      "Oracle reference price",
		}),
		reserve: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_reserve",
			Help:      "Pool reserve by currency",
		}, []string{"currency"}),
		agentBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agent_balance",
			Help:      "Agent balance by agent, role and currency",
		}, []string{"agent", "role", "currency"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by outcome",
		}, []string{"outcome"}),
		trackingError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking_error",
			Help:      "Mean absolute relative gap between pool and external price in the last run",
		}),
		kDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "k_drift",
			Help:      "Relative change of the constant product in the last run",
		}),
	}
	reg.MustRegister(p.tick, p.poolPrice, p.externalPrice, p.reserve, p.agentBalance, p.runs, p.trackingError, p.kDrift)
	return p
}

// Handler serves the private registry for scraping.
func (p *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PromRecorder) Record(snap *model.Snapshot) error {
	p.tick.Set(float64(snap.Tick))
	p.poolPrice.Set(snap.PoolPrice)
	p.externalPrice.Set(snap.ExternalPrice)
	p.reserve.WithLabelValues(model.DAI.String()).Set(snap.ReserveDai)
	p.reserve.WithLabelValues(model.ETH.String()).Set(snap.ReserveEth)
	for _, a := range snap.Agents {
		id := strconv.Itoa(a.ID)
		role := a.Role.String()
		p.agentBalance.WithLabelValues(id, role, model.ETH.String()).Set(a.Eth)
		p.agentBalance.WithLabelValues(id, role, model.DAI.String()).Set(a.Dai)
	}
	return nil
}

func (p *PromRecorder) RecordRun(sum *model.RunSummary) error {
	outcome := "ok"
	if sum.Err != "" {
		outcome = "error"
	}
	p.runs.WithLabelValues(outcome).Inc()
	p.trackingError.Set(sum.TrackingError)
	p.kDrift.Set(sum.KDrift())
	return nil
}

func (p *PromRecorder) Close() error {
	if p.textfile == "" {
		return nil
	}
	log.Printf("[INFO] writing prometheus textfile: %s", p.textfile)
	return prometheus.WriteToTextfile(p.textfile, p.registry)
}
