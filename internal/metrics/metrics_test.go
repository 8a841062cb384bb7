package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEarn(t *testing.T) {
	m := New()
	m.ObserveEarn("ad_watch", "ok", 20)
	m.ObserveEarn("ad_watch", "ok", 20)
	m.ObserveEarn("daily_login", "duplicate_claim", 0)

	if got := testutil.ToFloat64(m.earnEventsTotal.WithLabelValues("ad_watch", "ok")); got != 2 {
		t.Fatalf("earn events=%v", got)
	}
	if got := testutil.ToFloat64(m.pointsAwardedTotal.WithLabelValues("ad_watch")); got != 40 {
		t.Fatalf("points awarded=%v", got)
	}
	if got := testutil.ToFloat64(m.pointsAwardedTotal.WithLabelValues("daily_login")); got != 0 {
		t.Fatalf("daily points=%v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveEarn("ad_watch", "ok", 20)
	m.ObserveWithdrawalRequest("upi", "ok")
	m.ObserveWithdrawalTransition("approved")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveWithdrawalTransition("approved")
	if got := testutil.ToFloat64(b.withdrawalTransitions.WithLabelValues("approved")); got != 0 {
		t.Fatalf("registries leaked: %v", got)
	}
}
