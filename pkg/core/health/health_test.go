package health

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "test passed"}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("cdlc", "1.0.0")

	registry.RegisterFunc("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "store open"}
	})
	registry.RegisterFunc("cache", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "cache available"}
	})

	report := registry.Check(context.Background())

	if report.Service != "cdlc" {
		t.Errorf("Service = %v, want cdlc", report.Service)
	}
	if report.Version != "1.0.0" {
		t.Errorf("Version = %v, want 1.0.0", report.Version)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("Checks count = %v, want 2", len(report.Checks))
	}
	if report.Checks[0].Name != "cache" || report.Checks[1].Name != "store" {
		t.Errorf("Checks order = %v, %v, want cache, store", report.Checks[0].Name, report.Checks[1].Name)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry("cdlc", "1.0.0")

	registry.RegisterFunc("temp", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	if report := registry.Check(context.Background()); len(report.Checks) != 1 {
		t.Errorf("Before unregister: Checks count = %v, want 1", len(report.Checks))
	}

	registry.Unregister("temp")

	if report := registry.Check(context.Background()); len(report.Checks) != 0 {
		t.Errorf("After unregister: Checks count = %v, want 0", len(report.Checks))
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unknown counts as degraded", []Status{StatusHealthy, ""}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("cdlc", "1.0.0")
			for i, status := range tt.statuses {
				status := status
				registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: status}
				})
			}
			if got := registry.Check(context.Background()).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_CheckWithTimeout(t *testing.T) {
	registry := NewRegistry("cdlc", "1.0.0")

	registry.RegisterFunc("deadline", func(ctx context.Context) CheckResult {
		if _, ok := ctx.Deadline(); !ok {
			return CheckResult{Status: StatusUnhealthy, Message: "no deadline"}
		}
		return CheckResult{Status: StatusHealthy}
	})

	if report := registry.CheckWithTimeout(5 * time.Second); report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("cdlc", "1.0.0")

	var counter int32
	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}
	if len(report.Checks) != 5 {
		t.Errorf("Checks count = %v, want 5", len(report.Checks))
	}
	for _, c := range report.Checks {
		if c.Duration <= 0 || c.Timestamp.IsZero() {
			t.Errorf("check %s missing duration or timestamp", c.Name)
		}
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Service: "cdlc",
		Status:  StatusHealthy,
		Uptime:  time.Hour,
		Checks:  []CheckResult{{}, {}},
	}

	want := "Service: cdlc, Status: healthy, Uptime: 1h0m0s, Checks: 2"
	if got := report.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCompilerCheck(t *testing.T) {
	checker := CompilerCheck()
	if checker.Name() != "compiler" {
		t.Errorf("Name() = %v, want compiler", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("Status = %v (%s), want healthy", result.Status, result.Message)
	}
	if n, ok := result.Details["nodes"].(int); !ok || n == 0 {
		t.Errorf("Details[nodes] = %v, want node count", result.Details["nodes"])
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	ok := PingCheck("store", fakePinger{}).Check(context.Background())
	if ok.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", ok.Status)
	}

	down := PingCheck("store", fakePinger{err: errors.New("database is locked")}).Check(context.Background())
	if down.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", down.Status)
	}
	if !strings.Contains(down.Message, "locked") {
		t.Errorf("Message = %q, want the ping error", down.Message)
	}
}

func TestStatsCheck(t *testing.T) {
	result := StatsCheck("cache", func() map[string]interface{} {
		return map[string]interface{}{"size": 3}
	}).Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Details["size"] != 3 {
		t.Errorf("Details[size] = %v, want 3", result.Details["size"])
	}
}
