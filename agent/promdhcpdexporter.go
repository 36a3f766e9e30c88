package agent

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	dhcpddata "isc.org/dhcpdleases/daemondata/dhcpd"
)

// Namespace of the exported metrics.
const promNamespace = "dhcpd"

// Main structure for the Prometheus DHCP lease exporter. It holds its
// settings, the lease source, the HTTP server and the main loop controlling
// elements like ticker.
type PromDHCPDExporter struct {
	Settings *cli.Context

	Source     LeaseSource
	HTTPServer *http.Server

	Ticker        *time.Ticker
	DoneCollector chan bool
	Wg            *sync.WaitGroup

	Registry           *prometheus.Registry
	LeaseRecords       *prometheus.GaugeVec
	ActiveLeases       prometheus.Gauge
	ParseErrors        prometheus.Counter
	LastParseTimestamp prometheus.Gauge

	// Number of parse errors already added to the counter.
	reportedParseErrors uint64
	now                 func() time.Time
}

// Create new Prometheus DHCP lease exporter.
func NewPromDHCPDExporter(settings *cli.Context, source LeaseSource) *PromDHCPDExporter {
	pde := &PromDHCPDExporter{
		Settings:      settings,
		Source:        source,
		DoneCollector: make(chan bool),
		Wg:            &sync.WaitGroup{},
		Registry:      prometheus.NewRegistry(),
		now:           time.Now,
	}

	factory := promauto.With(pde.Registry)

	pde.LeaseRecords = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "lease_records",
		Help:      "Lease declarations in the lease file by binding state",
	}, []string{"binding_state"})
	pde.ActiveLeases = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "active_leases",
		Help:      "Addresses having an active lease",
	})
	pde.ParseErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "lease_file",
		Name:      "parse_errors_total",
		Help:      "Failed attempts to read or parse the lease file",
	})
	pde.LastParseTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: "lease_file",
		Name:      "last_parse_timestamp_seconds",
		Help:      "Time of the last successful lease file parse",
	})

	// prepare http handler
	mux := http.NewServeMux()
	hdlr := promhttp.HandlerFor(pde.Registry, promhttp.HandlerOpts{})
	mux.Handle("/metrics", hdlr)
	pde.HTTPServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return pde
}

// Start goroutine with main loop for collecting stats and http server for
// exposing them to Prometheus.
func (pde *PromDHCPDExporter) Start() {
	addrPort := net.JoinHostPort(pde.Settings.String("prometheus-address"), strconv.Itoa(pde.Settings.Int("prometheus-port")))
	pde.HTTPServer.Addr = addrPort

	log.WithFields(log.Fields{
		"address":  addrPort,
		"interval": pde.Settings.Int("prometheus-interval"),
	}).Info("Prometheus DHCP lease exporter listening")

	go func() {
		err := pde.HTTPServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Problem with serving Prometheus DHCP lease exporter")
		}
	}()

	// Collect once so the metrics are available before the first tick.
	if err := pde.collectStats(); err != nil {
		log.WithError(err).Warn("Some errors were encountered while collecting lease stats")
	}

	interval := pde.Settings.Int("prometheus-interval")
	if interval <= 0 {
		interval = 10
	}
	pde.Ticker = time.NewTicker(time.Duration(interval) * time.Second)

	pde.Wg.Add(1)
	go pde.statsCollectorLoop()
}

// Shutdown exporter goroutines and unregister prometheus stats.
func (pde *PromDHCPDExporter) Shutdown() {
	log.Info("Stopping Prometheus DHCP lease exporter")

	if pde.HTTPServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pde.HTTPServer.SetKeepAlivesEnabled(false)
		if err := pde.HTTPServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Could not gracefully shutdown the DHCP lease exporter")
		}
	}

	if pde.Ticker != nil {
		pde.Ticker.Stop()
		pde.DoneCollector <- true
		pde.Wg.Wait()
	}

	pde.Registry.Unregister(pde.LeaseRecords)
	pde.Registry.Unregister(pde.ActiveLeases)
	pde.Registry.Unregister(pde.ParseErrors)
	pde.Registry.Unregister(pde.LastParseTimestamp)

	log.Info("Stopped Prometheus DHCP lease exporter")
}

// Main loop for collecting stats periodically.
func (pde *PromDHCPDExporter) statsCollectorLoop() {
	defer pde.Wg.Done()
	for {
		select {
		case <-pde.Ticker.C:
			if err := pde.collectStats(); err != nil {
				log.WithError(err).Warn("Some errors were encountered while collecting lease stats")
			}
		case <-pde.DoneCollector:
			return
		}
	}
}

// Updates the metrics from the current lease snapshot. The lease metrics
// are left intact until the lease file is parsed for the first time.
func (pde *PromDHCPDExporter) collectStats() error {
	snapshot := pde.Source.GetSnapshot()

	if snapshot.ParseErrors > pde.reportedParseErrors {
		pde.ParseErrors.Add(float64(snapshot.ParseErrors - pde.reportedParseErrors))
		pde.reportedParseErrors = snapshot.ParseErrors
	}

	if snapshot.ParsedAt.IsZero() {
		if snapshot.LastError != nil {
			return pkgerrors.WithMessage(snapshot.LastError, "lease file has not been parsed yet")
		}
		return pkgerrors.New("lease file has not been parsed yet")
	}

	for state, count := range snapshot.Leases.CountByBindingState() {
		pde.LeaseRecords.WithLabelValues(state.String()).Set(float64(count))
	}
	active := snapshot.Leases.ActiveAt(dhcpddata.NewDateFromTime(pde.now()))
	pde.ActiveLeases.Set(float64(len(active)))
	pde.LastParseTimestamp.Set(float64(snapshot.ParsedAt.Unix()))

	return nil
}
