// Package arbiter is a reference implementation of the higher-level
// fairness arbiter that owns a cluster's job scheduler actors. It is not
// part of the actor's correctness surface (placement correctness lives
// entirely in jobactor/sched); it exists so the actor can be exercised
// end-to-end: fanning GetEmptyNodes out across peer jobs, intersecting
// their answers, and driving each job's ScheduleLocal/ScheduleRemote in
// turn.
package arbiter

import (
	"context"
	"time"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// PeerDeadline bounds a single peer's GetEmptyNodes call. A peer that
// misses it is treated as though it had reported every node it was asked
// about as empty: its answer is left out of the intersection — see
// emptynodes.go.
const PeerDeadline = 500 * time.Millisecond

// ScheduleDeadline bounds one job's ScheduleLocal/ScheduleRemote
// round-trip. Missing it is a schedule-timeout condition (§7 kind 3): the
// arbiter tells the job's actor to Die rather than waiting further.
const ScheduleDeadline = 30 * time.Second

// PeerScheduler is the subset of a job scheduler actor's synchronous API
// the arbiter calls, both on the job it is actively scheduling and on
// every other live job it fans GetEmptyNodes out to. Expressing it as an
// interface here, rather than importing jobactor.Actor directly, keeps
// this package usable against fakes in tests without spinning up real
// actor goroutines.
type PeerScheduler interface {
	GetEmptyNodes(ctx context.Context, available []cluster.NodeId) ([]cluster.NodeId, error)
	ScheduleLocal(ctx context.Context, available []cluster.NodeId) (sched.Decision, error)
	ScheduleRemote(ctx context.Context, free []cluster.NodeId) (sched.Decision, error)
	GetStats(ctx context.Context) (queuedTotal int, runningCount int, err error)
}

// Dier is implemented by a job scheduler actor's Die method. It is kept
// separate from PeerScheduler because only the arbiter driving a job's
// own round ever calls it — peers being fanned out to never do.
type Dier interface {
	Die(reason string)
}
