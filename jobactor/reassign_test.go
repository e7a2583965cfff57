package jobactor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/jobsched/sched"
)

// Scenario 6: topology churn reassignment.
func TestReassignKeepsSurvivingBucketAndRehomesOrphans(t *testing.T) {
	store := sched.NewStore()
	t1 := &sched.Task{TaskId: 1, Inputs: []sched.Input{{Url: "u1", Host: "H1"}}}
	t2 := &sched.Task{TaskId: 2, Inputs: []sched.Input{{Url: "u2", Host: "H2"}}}
	t3 := &sched.Task{TaskId: 3, Inputs: []sched.Input{{Url: "u3", Host: "H2"}}}
	store.BucketOrCreate("H1").Push(t1)
	store.BucketOrCreate("H2").Push(t2)
	store.NoPrefBucket().Push(t3)

	rng := rand.New(rand.NewSource(1))
	errs := reassign(store, nodes("H1", "H3"), rng)
	assert.Empty(t, errs)

	assert.Equal(t, 1, store.Bucket("H1").Queued, "H1's bucket is retained across the topology change")
	assert.Equal(t, 1, store.Bucket("H1").Lifetime, "lifetime for the surviving bucket is preserved, not bumped by reassignment")
	assert.Nil(t, store.Bucket("H2"), "H2 is gone from the new topology")
	assert.Equal(t, 2, store.NoPrefBucket().Queued, "t2 and t3 both named only H2, which is no longer live, so assign_nopref takes them")

	total := store.QueuedTotal()
	assert.Equal(t, 3, total, "t2 and t3 must land somewhere in the new topology")
}

func TestReassignSurfacesAbortWhenOrphanUnschedulable(t *testing.T) {
	store := sched.NewStore()
	stuck := &sched.Task{
		TaskId:      1,
		ForceRemote: true,
		Inputs:      []sched.Input{{Url: "u", Host: "H1"}},
	}
	// NoPref is always orphaned by a topology change, regardless of which
	// nodes survive, so this task is always re-run through assign_task.
	store.NoPrefBucket().Push(stuck)

	rng := rand.New(rand.NewSource(1))
	// The only surviving node is the task's own (force_remote-excluded)
	// host: it can no longer be placed anywhere.
	errs := reassign(store, nodes("H1"), rng)
	assert.Len(t, errs, 1)

	var abortErr *abortError
	assert.ErrorAs(t, errs[0], &abortErr)
	assert.Equal(t, causeForcedRemoteUnschedulable, abortErr.Cause)
}
