//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveInvocation(t *testing.T) {
	before := testutil.ToFloat64(aiInvocationsTotal.WithLabelValues("classify", "failure"))
	ObserveInvocation(" Classify ", 40*time.Millisecond, false)
	after := testutil.ToFloat64(aiInvocationsTotal.WithLabelValues("classify", "failure"))
	if after-before != 1 {
		t.Fatalf("want failure counter +1, got %v -> %v", before, after)
	}
}

func TestTrackInflight(t *testing.T) {
	g := aiInflight.WithLabelValues("generate")
	done := TrackInflight("generate")
	if v := testutil.ToFloat64(g); v != 1 {
		t.Fatalf("want 1 in flight, got %v", v)
	}
	done()
	if v := testutil.ToFloat64(g); v != 0 {
		t.Fatalf("want 0 in flight, got %v", v)
	}
}

func TestObserveStore(t *testing.T) {
	ObserveStore("add_job", 3, 8)
	if v := testutil.ToFloat64(storeJobs); v != 3 {
		t.Fatalf("jobs gauge: want 3, got %v", v)
	}
	if v := testutil.ToFloat64(storeChatMessages); v != 8 {
		t.Fatalf("chat gauge: want 8, got %v", v)
	}
}

func TestMustRegister_Idempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
