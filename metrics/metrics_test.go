package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordOutcome("ok")
	r.RecordOutcome("ok")
	r.RecordOutcome("model_fit")
	r.RecordImputed("close", 3)
	r.RecordImputed("volume", 0)
	r.RecordDiffOrder(1)
	r.ObserveStage(StageFit, 20*time.Millisecond)

	if got := testutil.ToFloat64(r.outcomes.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(r.outcomes.WithLabelValues("model_fit")); got != 1 {
		t.Errorf("Expected 1 model_fit outcome, got %v", got)
	}
	if got := testutil.ToFloat64(r.imputed.WithLabelValues("close")); got != 3 {
		t.Errorf("Expected 3 imputed close values, got %v", got)
	}
	if got := testutil.ToFloat64(r.diffOrder.WithLabelValues("1")); got != 1 {
		t.Errorf("Expected d=1 counted once, got %v", got)
	}
	if n := testutil.CollectAndCount(r.imputed); n != 1 {
		t.Errorf("Zero imputations should not create a series, got %d series", n)
	}
	if n := testutil.CollectAndCount(r.stageDuration); n != 1 {
		t.Errorf("Expected one stage histogram, got %d", n)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.RecordOutcome("ok")
	r.RecordImputed("close", 1)
	r.RecordDiffOrder(0)
	r.ObserveStage(StageNormalize, time.Second)
}
