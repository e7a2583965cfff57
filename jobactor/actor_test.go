package jobactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/jobsched/sched"
)

func newTestActor(t *testing.T, initialNodes ...string) (*Actor, func()) {
	coordinator, stop := NewCoordinator()
	actor := NewActor(Config{JobName: "test-job"}, coordinator, nodes(initialNodes...))
	return actor, stop
}

func TestActorScheduleLocalRoundTrip(t *testing.T) {
	actor, stop := newTestActor(t, "A")
	defer stop()

	actor.NewTask(&sched.Task{TaskId: 1, Inputs: []sched.Input{{Url: "u", Host: "A"}}},
		[]sched.NodeStat{{Load: 0, Input: sched.Input{Url: "u", Host: "A"}}})

	require.Eventually(t, func() bool {
		q, _, err := actor.GetStats(context.Background())
		return err == nil && q == 1
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := actor.ScheduleLocal(ctx, nodes("A"))
	require.NoError(t, err)
	assert.Equal(t, sched.Run, d.Kind)
	assert.EqualValues(t, 1, d.Task.TaskId)
}

func TestActorDieTerminates(t *testing.T) {
	actor, stop := newTestActor(t, "A")
	defer stop()

	actor.Die("test requested shutdown")

	select {
	case <-actor.Done():
	case <-time.After(time.Second):
		t.Fatal("actor did not terminate after Die")
	}

	_, _, err := actor.GetStats(context.Background())
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestActorTerminatesWithCoordinator(t *testing.T) {
	coordinator, stop := NewCoordinator()
	actor := NewActor(Config{JobName: "test-job"}, coordinator, nodes("A"))

	stop()

	select {
	case <-actor.Done():
	case <-time.After(time.Second):
		t.Fatal("actor did not terminate when its coordinator died")
	}
}

// Scenario 5, exercised through the actor shell: a force_remote task that
// cannot be scheduled anywhere makes the actor abort and terminate.
func TestActorAbortsAndTerminatesOnUnschedulableTask(t *testing.T) {
	sink := &recordingEventSink{}
	coordinator, stop := NewCoordinator()
	defer stop()

	actor := NewActor(Config{JobName: "test-job", EventSink: sink}, coordinator, nodes("H1"))
	actor.NewTask(&sched.Task{
		TaskId:      1,
		ForceRemote: true,
		Inputs:      []sched.Input{{Url: "u", Host: "H1"}},
	}, nil)

	select {
	case <-actor.Done():
	case <-time.After(time.Second):
		t.Fatal("actor did not terminate after an abort")
	}

	require.Len(t, sink.aborts, 1)
	assert.Equal(t, "forced_remote_unschedulable", sink.aborts[0].cause)
}

type recordedAbort struct {
	jobName string
	cause   string
	task    *sched.Task
}

type recordingEventSink struct {
	aborts []recordedAbort
}

func (s *recordingEventSink) Abort(jobName string, t *sched.Task, cause string) {
	s.aborts = append(s.aborts, recordedAbort{jobName: jobName, cause: cause, task: t})
}
