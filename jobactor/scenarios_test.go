package jobactor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// scenarios_test.go encodes the six numbered scheduling scenarios, one
// test function each, exercised against the same component functions the
// unit tests use directly (no actor goroutine involved; actor_test.go
// covers scenario 5's abort-and-terminate through the actor shell).

func TestScenario1_LeastLoadedLocalPick(t *testing.T) {
	store := sched.NewStore()
	tA := &sched.Task{TaskId: 1}
	tB1 := &sched.Task{TaskId: 2}
	tB2 := &sched.Task{TaskId: 3}
	tB3 := &sched.Task{TaskId: 4}
	store.BucketOrCreate("A").Push(tA)
	for _, tb := range []*sched.Task{tB1, tB2, tB3} {
		store.BucketOrCreate("B").Push(tb)
	}

	d := scheduleLocal(store, nodes("A", "B"))
	require.Equal(t, sched.Run, d.Kind)
	assert.Equal(t, tA, d.Task)
	assert.Equal(t, 0, store.Bucket("A").Queued)

	d2 := scheduleLocal(store, nodes("A", "B"))
	require.Equal(t, sched.Run, d2.Kind)
	assert.Equal(t, "B", string(d2.Node), "B is now the only bucket with queued work")
}

func TestScenario2_FallbackToRemoteViaNoPref(t *testing.T) {
	store := sched.NewStore()
	t1 := &sched.Task{TaskId: 1}
	t2 := &sched.Task{TaskId: 2}
	store.NoPrefBucket().Push(t1)
	store.NoPrefBucket().Push(t2)

	d := scheduleLocal(store, nodes("X", "Y"))
	require.Equal(t, sched.Run, d.Kind)
	assert.Contains(t, []string{"X", "Y"}, string(d.Node))
	assert.Equal(t, 1, store.NoPrefBucket().Queued)
}

func TestScenario3_NoLocalThenEmptyNodeFallback(t *testing.T) {
	store := sched.NewStore()
	tA := &sched.Task{TaskId: 1}
	store.BucketOrCreate("A").Push(tA)

	local := scheduleLocal(store, nodes("B"))
	require.Equal(t, sched.NoLocal, local.Kind, "A's bucket has work but A isn't in the available set")

	// peers' GetEmptyNodes (simulated directly: a peer with no bucket and
	// an empty NoPref at B returns B as empty) intersect down to [B];
	// the arbiter then calls ScheduleRemote on this job with that result.
	remote := scheduleRemote(store, nodes("B"))
	require.Equal(t, sched.Run, remote.Kind)
	assert.Equal(t, tA, remote.Task)
	assert.Equal(t, cluster.NodeId("B"), remote.Node)
	assert.Equal(t, 0, store.Bucket("A").Queued, "the task was displaced out of A's bucket")
}

func TestScenario4_BlacklistForcesPopSuitable(t *testing.T) {
	store := sched.NewStore()
	t1 := &sched.Task{TaskId: 1, TaskBlacklist: map[cluster.NodeId]bool{"B": true}}
	t2 := &sched.Task{TaskId: 2}
	store.BucketOrCreate("A").Push(t2)
	store.BucketOrCreate("A").Push(t1) // pushed last, so t1 sits at the head

	d := scheduleRemote(store, nodes("B"))
	require.Equal(t, sched.Run, d.Kind)
	assert.Equal(t, t2, d.Task)
	assert.Equal(t, cluster.NodeId("B"), d.Node)
	assert.Equal(t, []*sched.Task{t1}, store.Bucket("A").Tasks)
}

func TestScenario5_ForceRemoteAssignmentAbort(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{
		TaskId:      1,
		ForceRemote: true,
		Inputs:      []sched.Input{{Url: "u", Host: "H1"}},
	}

	err := assignTask(store, live("H1"), task, nil)
	var abortErr *abortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, causeForcedRemoteUnschedulable, abortErr.Cause)
	assert.Equal(t, task, abortErr.Task)
}

func TestScenario6_TopologyChurnReassignment(t *testing.T) {
	store := sched.NewStore()
	t1 := &sched.Task{TaskId: 1, Inputs: []sched.Input{{Url: "u1", Host: "H1"}}}
	t2 := &sched.Task{TaskId: 2, Inputs: []sched.Input{{Url: "u2", Host: "H3"}}}
	t3 := &sched.Task{TaskId: 3, Inputs: []sched.Input{{Url: "u3", Host: "H3"}}}
	store.BucketOrCreate("H1").Push(t1)
	store.BucketOrCreate("H2").Push(t2)
	store.NoPrefBucket().Push(t3)

	errs := reassign(store, nodes("H1", "H3"), rand.New(rand.NewSource(7)))
	require.Empty(t, errs)

	assert.Equal(t, 1, store.Bucket("H1").Queued, "H1's bucket is retained")
	assert.Equal(t, 1, store.Bucket("H1").Lifetime, "preserved lifetime counter, not bumped by reassignment")
	assert.Nil(t, store.Bucket("H2"), "H2 no longer exists in the new topology")
	assert.Equal(t, 2, store.Bucket("H3").Queued, "t2 and t3 both name H3 and land there")
}
