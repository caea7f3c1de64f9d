package metric

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_RegistersInstruments(t *testing.T) {
	m := New()

	m.ConnectionsActive.Set(3)
	m.ConnectionsTotal.Inc()
	m.CommandsTotal.WithLabelValues("GET").Inc()
	m.CommandsTotal.WithLabelValues("GET").Inc()
	m.ArenaUsedBytes.Set(128)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := map[string]bool{}
	for _, f := range families {
		byName[f.GetName()] = true
	}
	for _, want := range []string{
		"tachikv_connections_active",
		"tachikv_connections_total",
		"tachikv_commands_total",
		"tachikv_arena_used_bytes",
	} {
		if !byName[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := New()
	b := New()

	a.ConnectionsTotal.Inc()
	if a.Registry() == b.Registry() {
		t.Fatal("instances share a registry")
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.CommandsTotal.WithLabelValues("SET").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `tachikv_commands_total{verb="SET"} 1`) {
		t.Errorf("body missing command counter:\n%s", body)
	}
}
