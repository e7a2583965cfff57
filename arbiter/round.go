package arbiter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/common/stats"
	"github.com/twitter/jobsched/sched"
)

// Round drives one scheduling attempt for a single job: ScheduleLocal
// first, and only on a NoLocal verdict does it pay for the cross-job
// GetEmptyNodes fan-out and fall through to ScheduleRemote, matching
// §4.4's two-phase design ("only runs when... no local-data tasks exist").
//
// A peer call that returns an error (the actor's own ScheduleDeadline
// elapsed, or it already terminated) is treated as a schedule-timeout
// (§7 kind 3): self is told to Die and Round reports NoNodes for this
// round.
func Round(ctx context.Context, self PeerScheduler, peers []PeerScheduler, available []cluster.NodeId, die Dier) sched.Decision {
	return RoundWithStats(ctx, self, peers, available, die, stats.NilStatsReceiver())
}

// RoundWithStats is Round with an explicit StatsReceiver for
// schedule-timeout and peer-timeout counters.
func RoundWithStats(ctx context.Context, self PeerScheduler, peers []PeerScheduler, available []cluster.NodeId, die Dier, stat stats.StatsReceiver) sched.Decision {
	roundCtx, cancel := context.WithTimeout(ctx, ScheduleDeadline)
	defer cancel()

	local, err := self.ScheduleLocal(roundCtx, available)
	if err != nil {
		return abortRound(stat, die, "scheduleLocal", err)
	}
	if local.Kind != sched.NoLocal {
		return local
	}

	free := GetEmptyNodes(roundCtx, peers, available, stat)

	remote, err := self.ScheduleRemote(roundCtx, free)
	if err != nil {
		return abortRound(stat, die, "scheduleRemote", err)
	}
	return remote
}

// abortRound wraps the failing call's error with the phase and deadline
// that produced it, then tells self to Die. errors.Cause distinguishes a
// context deadline (the actor took too long) from anything else (most
// commonly the actor having already terminated) so the die reason names
// the right failure instead of calling every non-nil error a timeout.
func abortRound(stat stats.StatsReceiver, die Dier, phase string, err error) sched.Decision {
	wrapped := errors.Wrapf(err, "%s did not complete within %s", phase, ScheduleDeadline)
	if errors.Cause(err) == context.DeadlineExceeded {
		stat.Counter(stats.SchedScheduleTimeoutCounter).Inc(1)
		die.Die(fmt.Sprintf("schedule timeout: %+v", wrapped))
	} else {
		die.Die(fmt.Sprintf("schedule aborted: %+v", wrapped))
	}
	return sched.NoNodesDecision()
}
