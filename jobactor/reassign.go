package jobactor

import (
	"math/rand"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// reassign implements §4.6: on a topology change, discard buckets for
// departed nodes, keep the rest, and re-run assign_task for every task
// that was in an orphaned bucket (NoPref always included) against the new
// node set.
//
// A task's lifetime counter is not carried over — being re-placed from
// scratch is exactly what resets it; this is intentional per §4.6.
//
// Reassignment failures (a task that can no longer be placed anywhere)
// are collected and returned together; the actor shell aborts on the
// first of them and discards the rest (see reassignFirstError).
func reassign(store *sched.Store, newNodes []cluster.NodeId, rng *rand.Rand) []error {
	live := make(map[cluster.NodeId]bool, len(newNodes))
	for _, n := range newNodes {
		live[n] = true
	}

	kept, orphaned := store.Partition(live)
	store.Reset(kept)

	var errs []error
	for _, t := range orphaned {
		placed := t.Clone()
		if err := assignTask(store, live, placed, syntheticStats(placed, rng)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// syntheticStats pairs each input of t with a uniform random load in
// [1,100], per §4.6: reassignment is locality-driven with a random
// tiebreak when multiple input hosts survive the topology change.
func syntheticStats(t *sched.Task, rng *rand.Rand) []sched.NodeStat {
	stats := make([]sched.NodeStat, len(t.Inputs))
	for i, in := range t.Inputs {
		stats[i] = sched.NodeStat{Load: 1 + rng.Intn(100), Input: in}
	}
	return stats
}
