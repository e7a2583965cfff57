package stats

import (
	"testing"
)

func TestScopeChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should be empty.")
	}

	statp := stat.Scope("a/b", "c").(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should still empty.")
	}
	if len(statp.scope) != 2 || statp.scope[0] != "a_SLASH_b" || statp.scope[1] != "c" {
		t.Fatal("Invalid scope value: ", statp.scope)
	}
	if statp.scopedName("d") != "a_SLASH_b/c/d" {
		t.Fatal("Invalid scope name: " + statp.scopedName("d"))
	}
}

func TestNonLatching(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	stat.Counter(SchedNoNodesCounter).Inc(1)

	snap := stat.snapshot()
	if snap[SchedNoNodesCounter] != int64(1) {
		t.Fatal("Expected current stats in snapshot", snap)
	}

	// Render resets counters, so a second snapshot after render sees zero.
	stat.Render(false)
	snap = stat.snapshot()
	if snap[SchedNoNodesCounter] != int64(0) {
		t.Fatal("Expected clearing of stats after render", snap)
	}
}

func TestLatencyTracksElapsedTime(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	lat := stat.Latency(SchedAssignLatency_ms).Time()
	lat.Stop()

	snap := stat.snapshot()
	if snap[SchedAssignLatency_ms+".count"] != int64(1) {
		t.Fatal("Expected one sample recorded in the latency histogram", snap)
	}
}

func TestVerifyStatsAgainstSchedulingCounters(t *testing.T) {
	stat := DefaultStatsReceiver()
	stat.Counter(SchedNoNodesCounter).Inc(3)
	stat.Gauge(SchedQueuedTotalGauge).Update(7)

	VerifyStats("scheduling counters", stat, t, map[string]Rule{
		SchedNoNodesCounter:   {Checker: Int64EqTest, Value: 3},
		SchedQueuedTotalGauge: {Checker: Int64EqTest, Value: 7},
		"nonexistent.counter":  {Checker: DoesNotExistTest, Value: nil},
	})
}
