package jobactor

import (
	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// WorkerHandle identifies a running worker process. Done is closed when
// the worker terminates, normally or not; TaskStarted begins observing it.
type WorkerHandle interface {
	Id() string
	Done() <-chan struct{}
}

// Coordinator is the actor's weak observation of the external job
// coordinator that owns it. Its Done channel closes when the coordinator
// dies, which unconditionally terminates the actor (§5 "Resource policy").
type Coordinator interface {
	Done() <-chan struct{}
}

// EventSink is the outbound collaborator receiving one line per abort
// condition, per §6 ("Outbound to event log").
type EventSink interface {
	Abort(jobName string, t *sched.Task, cause string)
}

// asynchronous, fire-and-forget messages

type newTaskMsg struct {
	task      *sched.Task
	nodeStats []sched.NodeStat
}

type updateNodesMsg struct {
	nodes []cluster.NodeId
}

type taskStartedMsg struct {
	node   cluster.NodeId
	worker WorkerHandle
}

type dieMsg struct {
	reason string
}

// workerDoneMsg and coordinatorDoneMsg are injected by the actor's own
// watcher goroutines, never sent by a collaborator directly.
type workerDoneMsg struct {
	worker WorkerHandle
}

type coordinatorDoneMsg struct{}

// synchronous requests; each carries its own reply channel.

type getStatsMsg struct {
	reply chan statsReply
}

type statsReply struct {
	queuedTotal  int
	runningCount int
}

type getEmptyNodesMsg struct {
	available []cluster.NodeId
	reply     chan []cluster.NodeId
}

type scheduleLocalMsg struct {
	available []cluster.NodeId
	reply     chan sched.Decision
}

type scheduleRemoteMsg struct {
	free  []cluster.NodeId
	reply chan sched.Decision
}
