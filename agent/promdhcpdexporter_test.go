package agent

import (
	"flag"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	dhcpddata "isc.org/dhcpdleases/daemondata/dhcpd"
)

// Lease source returning a fixed snapshot.
type fakeLeaseSource struct {
	snapshot LeaseSnapshot
}

func (s *fakeLeaseSource) GetSnapshot() LeaseSnapshot {
	return s.snapshot
}

// Leases with all binding states and an expired lease.
const exporterLeases = `
lease 192.0.2.1 {
  starts 0 2023/02/26 07:52:20;
  ends 0 2023/02/26 19:52:20;
  binding state active;
}
lease 192.0.2.2 {
  starts 6 2023/02/25 07:52:20;
  ends 6 2023/02/25 19:52:20;
  binding state free;
}
lease 192.0.2.3 {
  binding state abandoned;
}
lease 192.0.2.1 {
  starts 6 2023/02/25 07:52:20;
  ends 1 2023/02/27 19:52:20;
  binding state active;
}
`

// Creates the exporter settings.
func newExporterSettings(t *testing.T, port, interval string) *cli.Context {
	flags := flag.NewFlagSet("test", 0)
	flags.String("prometheus-address", "127.0.0.1", "usage")
	flags.Int("prometheus-port", 9548, "usage")
	flags.Int("prometheus-interval", 10, "usage")
	settings := cli.NewContext(nil, flags, nil)
	require.NoError(t, settings.Set("prometheus-port", port))
	require.NoError(t, settings.Set("prometheus-interval", interval))
	return settings
}

// Creates the snapshot from the lease file contents.
func newSnapshot(t *testing.T, content string) LeaseSnapshot {
	result, err := dhcpddata.Parse(content)
	require.NoError(t, err)
	return LeaseSnapshot{
		Leases:   result.Leases,
		ParsedAt: time.Date(2023, 2, 26, 12, 0, 0, 0, time.UTC),
	}
}

// Check creating the exporter and its metrics.
func TestNewPromDHCPDExporter(t *testing.T) {
	settings := newExporterSettings(t, "9548", "10")
	pde := NewPromDHCPDExporter(settings, &fakeLeaseSource{})
	defer pde.Shutdown()

	require.NotNil(t, pde.HTTPServer)
	require.NotNil(t, pde.LeaseRecords)
	require.NotNil(t, pde.ActiveLeases)
	require.NotNil(t, pde.ParseErrors)
	require.NotNil(t, pde.LastParseTimestamp)
}

// Check collecting the stats from the lease snapshot.
func TestPromDHCPDExporterCollectStats(t *testing.T) {
	source := &fakeLeaseSource{snapshot: newSnapshot(t, exporterLeases)}
	pde := NewPromDHCPDExporter(newExporterSettings(t, "9548", "10"), source)
	defer pde.Shutdown()
	pde.now = func() time.Time {
		return time.Date(2023, 2, 26, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, pde.collectStats())

	require.EqualValues(t, 2, testutil.ToFloat64(pde.LeaseRecords.WithLabelValues("active")))
	require.EqualValues(t, 1, testutil.ToFloat64(pde.LeaseRecords.WithLabelValues("free")))
	require.EqualValues(t, 1, testutil.ToFloat64(pde.LeaseRecords.WithLabelValues("abandoned")))
	// 192.0.2.1 is active, 192.0.2.2 expired, 192.0.2.3 abandoned.
	require.EqualValues(t, 1, testutil.ToFloat64(pde.ActiveLeases))
	require.EqualValues(t, 1677412800, testutil.ToFloat64(pde.LastParseTimestamp))
	require.Zero(t, testutil.ToFloat64(pde.ParseErrors))

	// Both leases for 192.0.2.1 have ended.
	pde.now = func() time.Time {
		return time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, pde.collectStats())
	require.Zero(t, testutil.ToFloat64(pde.ActiveLeases))
}

// Check that the parse errors are counted only once.
func TestPromDHCPDExporterParseErrors(t *testing.T) {
	source := &fakeLeaseSource{}
	pde := NewPromDHCPDExporter(newExporterSettings(t, "9548", "10"), source)
	defer pde.Shutdown()

	source.snapshot.ParseErrors = 2
	source.snapshot.LastError = errors.New("failed to read lease file")
	err := pde.collectStats()
	require.ErrorContains(t, err, "lease file has not been parsed yet")
	require.ErrorContains(t, err, "failed to read lease file")
	require.EqualValues(t, 2, testutil.ToFloat64(pde.ParseErrors))

	require.Error(t, pde.collectStats())
	require.EqualValues(t, 2, testutil.ToFloat64(pde.ParseErrors))

	source.snapshot = newSnapshot(t, exporterLeases)
	source.snapshot.ParseErrors = 3
	require.NoError(t, pde.collectStats())
	require.EqualValues(t, 3, testutil.ToFloat64(pde.ParseErrors))
}

// Check that the lease metrics are not set before the first parse.
func TestPromDHCPDExporterNotParsedYet(t *testing.T) {
	pde := NewPromDHCPDExporter(newExporterSettings(t, "9548", "10"), &fakeLeaseSource{})
	defer pde.Shutdown()

	require.ErrorContains(t, pde.collectStats(), "lease file has not been parsed yet")
	require.Zero(t, testutil.CollectAndCount(pde.LeaseRecords))
	require.Zero(t, testutil.ToFloat64(pde.LastParseTimestamp))
}

// Check starting the exporter and serving the metrics.
func TestPromDHCPDExporterStart(t *testing.T) {
	source := &fakeLeaseSource{snapshot: newSnapshot(t, exporterLeases)}
	pde := NewPromDHCPDExporter(newExporterSettings(t, "0", "1"), source)
	defer pde.Shutdown()

	pde.Start()
	require.NotNil(t, pde.Ticker)
	require.Equal(t, "127.0.0.1:0", pde.HTTPServer.Addr)

	request := httptest.NewRequest("GET", "/metrics", nil)
	recorder := httptest.NewRecorder()
	pde.HTTPServer.Handler.ServeHTTP(recorder, request)
	body, err := io.ReadAll(recorder.Result().Body)
	require.NoError(t, err)

	require.Contains(t, string(body), `dhcpd_lease_records{binding_state="abandoned"} 1`)
	require.Contains(t, string(body), "dhcpd_active_leases")
	require.Contains(t, string(body), "dhcpd_lease_file_parse_errors_total 0")
	require.Contains(t, string(body), "dhcpd_lease_file_last_parse_timestamp_seconds 1.6774128e+09")
}
