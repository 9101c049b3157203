package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStat struct{}

func (fakeStat) AcquiredConns() int32 { return 2 }
func (fakeStat) IdleConns() int32     { return 3 }
func (fakeStat) TotalConns() int32    { return 5 }

func TestObserveEstimation(t *testing.T) {
	before := testutil.ToFloat64(EstimationsTotal.WithLabelValues("test", OutcomeOK))
	ObserveEstimation("test", OutcomeOK, 3*time.Millisecond, 12)
	after := testutil.ToFloat64(EstimationsTotal.WithLabelValues("test", OutcomeOK))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakeStat{})
	if got := testutil.ToFloat64(DBPoolConnsOpen); got != 5 {
		t.Errorf("expected 5 open conns, got %v", got)
	}
	if got := testutil.ToFloat64(DBPoolConnsIdle); got != 3 {
		t.Errorf("expected 3 idle conns, got %v", got)
	}

	// Unknown types are ignored.
	UpdateDBPoolMetrics("not a stat")
	if got := testutil.ToFloat64(DBPoolConnsAcquired); got != 2 {
		t.Errorf("expected 2 acquired conns, got %v", got)
	}
}
