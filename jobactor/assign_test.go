package jobactor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

func live(ids ...string) map[cluster.NodeId]bool {
	out := map[cluster.NodeId]bool{}
	for _, id := range ids {
		out[cluster.NodeId(id)] = true
	}
	return out
}

func TestAssignTaskPrefersLeastQueuedAdmissibleHost(t *testing.T) {
	store := sched.NewStore()
	store.BucketOrCreate("A").Push(&sched.Task{TaskId: 99}) // A already has 1 queued

	task := &sched.Task{TaskId: 1}
	nodeStats := []sched.NodeStat{
		{Load: 0, Input: sched.Input{Url: "a", Host: "A"}},
		{Load: 0, Input: sched.Input{Url: "b", Host: "B"}},
	}

	err := assignTask(store, live("A", "B"), task, nodeStats)
	assert.NoError(t, err)
	assert.Equal(t, "b", task.ChosenInput)
	assert.Contains(t, store.Bucket("B").Tasks, task)
}

func TestAssignTaskFallsBackToNoPrefWhenNoInputHostIsLive(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{TaskId: 1, Inputs: []sched.Input{{Url: "a", Host: "A"}}}
	nodeStats := []sched.NodeStat{{Load: 0, Input: sched.Input{Url: "a", Host: "A"}}}

	err := assignTask(store, live("B"), task, nodeStats)
	assert.NoError(t, err)
	assert.Equal(t, "a", task.ChosenInput, "assign_nopref binds the first input even off-host")
	assert.Contains(t, store.NoPrefBucket().Tasks, task)
}

func TestAssignTaskForceLocalUnschedulableAborts(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{TaskId: 1, ForceLocal: true, Inputs: []sched.Input{{Url: "a", Host: "A"}}}

	err := assignTask(store, live("B"), task, nil)
	var abortErr *abortError
	assert.ErrorAs(t, err, &abortErr)
	assert.Equal(t, causeForcedLocalUnschedulable, abortErr.Cause)
}

// Scenario 5: force_remote with only the input's own host live aborts.
func TestAssignTaskForceRemoteUnschedulableAborts(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{
		TaskId:      1,
		ForceRemote: true,
		Inputs:      []sched.Input{{Url: "u", Host: "H1"}},
	}

	err := assignTask(store, live("H1"), task, nil)
	var abortErr *abortError
	assert.ErrorAs(t, err, &abortErr)
	assert.Equal(t, causeForcedRemoteUnschedulable, abortErr.Cause)
	assert.Equal(t, task, abortErr.Task)
}

func TestAssignTaskForceRemotePlacesOnOtherLiveHost(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{
		TaskId:      1,
		ForceRemote: true,
		Inputs:      []sched.Input{{Url: "u", Host: "H1"}},
	}

	err := assignTask(store, live("H1", "H2"), task, nil)
	assert.NoError(t, err)
	assert.Contains(t, store.NoPrefBucket().Tasks, task)
}

func TestAssignTaskExhaustedAborts(t *testing.T) {
	store := sched.NewStore()
	task := &sched.Task{TaskId: 1, TaskBlacklist: map[cluster.NodeId]bool{"A": true}}

	err := assignTask(store, live("A"), task, nil)
	var abortErr *abortError
	assert.ErrorAs(t, err, &abortErr)
	assert.Equal(t, causeExhausted, abortErr.Cause)
}
