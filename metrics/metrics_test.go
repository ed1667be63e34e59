package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveTick(2 * time.Millisecond)
	m.ObserveTick(3 * time.Millisecond)
	m.SetTopology(80, 412)
	m.Reconfigured()
	m.SetStreamClients(2)
	m.FrameDropped()

	body := scrape(t, m)
	for _, want := range []string{
		"nodefield_ticks_total 2",
		"nodefield_tick_duration_seconds_count 2",
		"nodefield_nodes 80",
		"nodefield_edges 412",
		"nodefield_stream_clients 2",
		"nodefield_stream_dropped_frames_total 1",
		"nodefield_reconfigures_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}

	t.Run("separate registries", func(t *testing.T) {
		other := New()
		if body := scrape(t, other); !strings.Contains(body, "nodefield_ticks_total 0") {
			t.Error("new instance should start at zero")
		}
		if other.registry == m.registry {
			t.Error("instances must not share a registry")
		}
	})
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveTick(time.Millisecond)
	m.SetTopology(1, 2)
	m.Reconfigured()
	m.SetStreamClients(1)
	m.FrameDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
