package jobactor

import (
	"fmt"
	"sort"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// abortCause tags why assignment gave up on a task; the actor shell turns
// this into an event-log line and terminates per §7.
type abortCause string

const (
	causeForcedRemoteUnschedulable abortCause = "forced_remote_unschedulable"
	causeForcedLocalUnschedulable  abortCause = "forced_local_unschedulable"
	causeExhausted                 abortCause = "exhausted"
)

// abortError is the only error the assignment/reassignment engines
// produce; it carries enough context for the event sink.
type abortError struct {
	Cause abortCause
	Task  *sched.Task
}

func (e *abortError) Error() string {
	return fmt.Sprintf("task %d aborted: %s", e.Task.TaskId, e.Cause)
}

func newAbort(cause abortCause, t *sched.Task) error {
	return &abortError{Cause: cause, Task: t}
}

// ratedEntry pairs a NodeStat with the current queued depth of its host's
// bucket, for the findpref sort.
type ratedEntry struct {
	bucketQueued int
	load         int
	order        int // original position, for a stable final tiebreak
	stat         sched.NodeStat
}

// assignTask implements §4.5: place a newly arrived task into the correct
// bucket given its inputs' node stats and the current node set.
func assignTask(store *sched.Store, currentNodes map[cluster.NodeId]bool, t *sched.Task, nodeStats []sched.NodeStat) error {
	if t.ForceRemote {
		admissible := liveExcept(currentNodes, t.TaskBlacklist)
		if len(exclude(admissible, t.Hosts())) == 0 {
			return newAbort(causeForcedRemoteUnschedulable, t)
		}
		return assignNoPref(store, t, admissible)
	}

	admissible := liveExcept(currentNodes, t.TaskBlacklist)
	return findPref(store, t, nodeStats, admissible)
}

// liveExcept returns the node ids of live (present, true) not in blacklist,
// in an arbitrary but stable (sorted) order — findpref/assignNoPref only
// care about set membership, never about the iteration order of this set.
func liveExcept(live map[cluster.NodeId]bool, blacklist map[cluster.NodeId]bool) []cluster.NodeId {
	out := make([]cluster.NodeId, 0, len(live))
	for n, ok := range live {
		if ok && !blacklist[n] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func admissibleSet(admissible []cluster.NodeId) map[cluster.NodeId]bool {
	set := make(map[cluster.NodeId]bool, len(admissible))
	for _, n := range admissible {
		set[n] = true
	}
	return set
}

// findPref filters nodeStats to admissible hosts, picks the least-full,
// least-loaded entry, and appends the task there; falling back to
// assignNoPref when nothing is admissible.
func findPref(store *sched.Store, t *sched.Task, nodeStats []sched.NodeStat, admissible []cluster.NodeId) error {
	allow := admissibleSet(admissible)

	entries := make([]ratedEntry, 0, len(nodeStats))
	for i, ns := range nodeStats {
		if !allow[ns.Input.Host] {
			continue
		}
		queued := 0
		if b := store.Bucket(ns.Input.Host); b != nil {
			queued = b.Queued
		}
		entries = append(entries, ratedEntry{bucketQueued: queued, load: ns.Load, order: i, stat: ns})
	}

	if len(entries) == 0 {
		return assignNoPref(store, t, admissible)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.bucketQueued != b.bucketQueued {
			return a.bucketQueued < b.bucketQueued
		}
		if a.load != b.load {
			return a.load < b.load
		}
		return a.order < b.order
	})

	best := entries[0].stat
	t.ChosenInput = best.Input.Url
	store.BucketOrCreate(best.Input.Host).Push(t)
	return nil
}

// assignNoPref implements §4.5's assign_nopref: aborts if there is nowhere
// to place the task, otherwise binds it to its first input and appends it
// to the NoPref bucket.
func assignNoPref(store *sched.Store, t *sched.Task, admissible []cluster.NodeId) error {
	if len(admissible) == 0 {
		return newAbort(causeExhausted, t)
	}
	if t.ForceLocal {
		return newAbort(causeForcedLocalUnschedulable, t)
	}
	t.ChosenInput = t.Inputs[0].Url
	store.NoPrefBucket().Push(t)
	return nil
}
