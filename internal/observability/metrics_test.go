package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryInterceptorRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewControlCollector(reg)
	if err != nil {
		t.Fatalf("NewControlCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/festival.control.v1.SimulationControl/Start"}

	_, err = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req any) (any, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("interceptor handler returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("SimulationControl", "Start", "OK")); got != 1 {
		t.Fatalf("control_requests_total = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "control_request_duration_seconds", map[string]string{
		"service": "SimulationControl",
		"method":  "Start",
	}); count != 1 {
		t.Fatalf("control_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestUnaryInterceptorRecordsErrorCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewControlCollector(reg)
	if err != nil {
		t.Fatalf("NewControlCollector: %v", err)
	}

	interceptor := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/festival.control.v1.SimulationControl/Resume"}

	_, _ = interceptor(context.Background(), struct{}{}, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.FailedPrecondition, "not paused")
	})

	if got := testutil.ToFloat64(collector.RPCRequests.WithLabelValues("SimulationControl", "Resume", "FailedPrecondition")); got != 1 {
		t.Fatalf("control_requests_total error label = %v, want 1", got)
	}
}

func TestCollectorsTolerateReregistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("second NewSimCollector: %v", err)
	}
	first.ObserveTick(time.Millisecond)
	if got := testutil.ToFloat64(second.TicksTotal); got != 1 {
		t.Fatalf("festival_ticks_total via second collector = %v, want 1", got)
	}
}

func TestSimCollectorRecordsLoop(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	c.ObserveTick(2 * time.Millisecond)
	c.IncSubsystemFault("power")
	c.IncIncident("Medical")
	c.IncDecision("budget", true)
	c.IncDecision("marketing", false)
	c.SetClock(time.Unix(1000, 0), 2.5)
	c.SetRunState("paused")
	c.SetWorld(1234, -50)

	checks := map[string]float64{
		"faults":     testutil.ToFloat64(c.SubsystemFaults.WithLabelValues("power")),
		"incidents":  testutil.ToFloat64(c.Incidents.WithLabelValues("Medical")),
		"routed":     testutil.ToFloat64(c.Decisions.WithLabelValues("budget", "true")),
		"unrouted":   testutil.ToFloat64(c.Decisions.WithLabelValues("marketing", "false")),
		"paused":     testutil.ToFloat64(c.RunState.WithLabelValues("paused")),
		"attendance": testutil.ToFloat64(c.Attendance) / 1234,
	}
	for name, got := range checks {
		if got != 1 {
			t.Fatalf("%s = %v, want 1", name, got)
		}
	}
	if got := testutil.ToFloat64(c.RunState.WithLabelValues("running")); got != 0 {
		t.Fatalf("running state gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.SimulatedTime); got != 1000 {
		t.Fatalf("simulated time = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(c.Profit); got != -50 {
		t.Fatalf("profit = %v, want -50", got)
	}

	var nilCollector *SimCollector
	nilCollector.ObserveTick(time.Second)
	nilCollector.SetRunState("idle")
}

func TestMetricsHandlerExposesSimulationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sim, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	ctrl, err := NewControlCollector(reg)
	if err != nil {
		t.Fatalf("NewControlCollector: %v", err)
	}
	sim.ObserveTick(time.Millisecond)
	sim.SetWorld(42, 7)
	ctrl.RPCRequests.WithLabelValues("svc", "method", "OK").Inc()
	ctrl.RPCDurations.WithLabelValues("svc", "method").Observe(0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"control_requests_total",
		"control_request_duration_seconds",
		"festival_ticks_total",
		"festival_attendance 42",
		"festival_profit 7",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestSplitMethod(t *testing.T) {
	cases := map[string][2]string{
		"":      {"unknown", "unknown"},
		"Start": {"unknown", "unknown"},
		"svc/":  {"svc", "unknown"},
		"/festival.control.v1.SimulationControl/Stop": {"SimulationControl", "Stop"},
	}
	for in, want := range cases {
		svc, method := SplitMethod(in)
		if svc != want[0] || method != want[1] {
			t.Fatalf("SplitMethod(%q) = %q,%q want %q,%q", in, svc, method, want[0], want[1])
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
