// Package jobactor implements the per-job fair scheduler actor: the
// task-placement engine described by §4 of the design — bucket store,
// placement predicate, local/remote scheduler, assignment engine, and
// reassignment engine — wrapped in a single-goroutine message loop that
// serializes every state mutation (§5).
package jobactor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/common/stats"
	"github.com/twitter/jobsched/sched"
)

// ErrTerminated is returned by a synchronous call made after the actor has
// already died.
var ErrTerminated = fmt.Errorf("job scheduler actor has terminated")

// Actor is one job's fair scheduler actor (§1). All exported methods are
// safe to call concurrently; every call is funneled through a single
// mailbox goroutine, so the bucket store and running set never need their
// own lock (§5).
type Actor struct {
	cfg Config

	reqCh chan interface{}
	done  chan struct{}
}

// NewActor creates and starts a job scheduler actor linked to coordinator.
// If the coordinator is already dead by the time this call races with
// NewActor's own goroutine start, the actor observes that immediately and
// terminates without ever having processed a message — see
// NewActorOrPlaceholder for the caller-side guard described in §5
// ("Startup race").
func NewActor(cfg Config, coordinator Coordinator, initialNodes []cluster.NodeId) *Actor {
	cfg = cfg.withDefaults()
	a := &Actor{
		cfg:   cfg,
		reqCh: make(chan interface{}, cfg.MailboxSize),
		done:  make(chan struct{}),
	}
	go a.watchCoordinator(coordinator)
	go a.loop(initialNodes)
	return a
}

// NewActorOrPlaceholder implements §5's startup race guard: if coordinator
// is already dead, it returns a placeholder actor that is already
// terminated, instead of starting a real actor for a job that is already
// over.
func NewActorOrPlaceholder(cfg Config, coordinator Coordinator, initialNodes []cluster.NodeId) *Actor {
	select {
	case <-coordinator.Done():
		a := &Actor{cfg: cfg.withDefaults(), reqCh: make(chan interface{}), done: make(chan struct{})}
		close(a.done)
		return a
	default:
		return NewActor(cfg, coordinator, initialNodes)
	}
}

func (a *Actor) watchCoordinator(c Coordinator) {
	select {
	case <-c.Done():
		a.sendAsync(coordinatorDoneMsg{})
	case <-a.done:
	}
}

// sendAsync delivers a fire-and-forget message, dropping it silently if
// the actor has already terminated.
func (a *Actor) sendAsync(msg interface{}) {
	select {
	case a.reqCh <- msg:
	case <-a.done:
	}
}

// NewTask asynchronously hands the actor a freshly created task to place.
func (a *Actor) NewTask(task *sched.Task, nodeStats []sched.NodeStat) {
	a.sendAsync(newTaskMsg{task: task, nodeStats: nodeStats})
}

// UpdateNodes asynchronously notifies the actor of a cluster topology
// change.
func (a *Actor) UpdateNodes(nodes []cluster.NodeId) {
	a.sendAsync(updateNodesMsg{nodes: nodes})
}

// TaskStarted asynchronously registers that a task is now running on
// worker at node; the actor begins observing worker's liveness.
func (a *Actor) TaskStarted(node cluster.NodeId, worker WorkerHandle) {
	a.sendAsync(taskStartedMsg{node: node, worker: worker})
}

// Die asynchronously requests that the actor emit an event and terminate.
func (a *Actor) Die(reason string) {
	a.sendAsync(dieMsg{reason: reason})
}

// Done reports when the actor has terminated, for callers that want to
// observe its lifetime directly (the arbiter does; ordinary collaborators
// shouldn't need to).
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// GetStats synchronously returns (queued_total, running_count).
func (a *Actor) GetStats(ctx context.Context) (queuedTotal int, runningCount int, err error) {
	reply := make(chan statsReply, 1)
	if err := a.call(ctx, getStatsMsg{reply: reply}); err != nil {
		return 0, 0, err
	}
	select {
	case r := <-reply:
		return r.queuedTotal, r.runningCount, nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case <-a.done:
		return 0, 0, ErrTerminated
	}
}

// GetEmptyNodes synchronously returns the subset of available for which
// this job holds no pending data-local work (§4.3). Callers issuing this
// across job actors should enforce their own deadline (§4.1,
// DefaultPeerDeadline) via ctx — on expiry, treat the peer as claiming all
// of available, per §5.
func (a *Actor) GetEmptyNodes(ctx context.Context, available []cluster.NodeId) ([]cluster.NodeId, error) {
	reply := make(chan []cluster.NodeId, 1)
	if err := a.call(ctx, getEmptyNodesMsg{available: available, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.done:
		return nil, ErrTerminated
	}
}

// ScheduleLocal synchronously runs the local scheduling phase (§4.4).
func (a *Actor) ScheduleLocal(ctx context.Context, available []cluster.NodeId) (sched.Decision, error) {
	reply := make(chan sched.Decision, 1)
	if err := a.call(ctx, scheduleLocalMsg{available: available, reply: reply}); err != nil {
		return sched.Decision{}, err
	}
	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return sched.Decision{}, ctx.Err()
	case <-a.done:
		return sched.Decision{}, ErrTerminated
	}
}

// ScheduleRemote synchronously runs the remote/displacement scheduling
// phase (§4.4) against free, the cross-job empty-node set.
func (a *Actor) ScheduleRemote(ctx context.Context, free []cluster.NodeId) (sched.Decision, error) {
	reply := make(chan sched.Decision, 1)
	if err := a.call(ctx, scheduleRemoteMsg{free: free, reply: reply}); err != nil {
		return sched.Decision{}, err
	}
	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return sched.Decision{}, ctx.Err()
	case <-a.done:
		return sched.Decision{}, ErrTerminated
	}
}

func (a *Actor) call(ctx context.Context, msg interface{}) error {
	select {
	case a.reqCh <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrTerminated
	}
}

// loop is the actor's single mailbox goroutine: it processes exactly one
// message to completion before the next, so the bucket store and running
// set never need their own synchronization (§5).
func (a *Actor) loop(initialNodes []cluster.NodeId) {
	defer close(a.done)

	store := sched.NewStore()
	nodes := toSet(initialNodes)
	running := map[WorkerHandle]cluster.NodeId{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stat := a.cfg.Stats.Scope(a.cfg.JobName)

	reportQueued := func() {
		stat.Gauge(stats.SchedQueuedTotalGauge).Update(int64(store.QueuedTotal()))
	}
	reportRunning := func() {
		stat.Gauge(stats.SchedRunningCountGauge).Update(int64(len(running)))
	}

	for {
		msg := <-a.reqCh
		switch m := msg.(type) {

		case newTaskMsg:
			lat := stat.Latency(stats.SchedAssignLatency_ms).Time()
			err := assignTask(store, nodes, m.task, m.nodeStats)
			lat.Stop()
			if err != nil {
				a.abort(stat, err)
				return
			}
			stat.Counter(stats.SchedBucketLifetimeCounter).Inc(1)
			reportQueued()

		case updateNodesMsg:
			lat := stat.Latency(stats.SchedReassignLatency_ms).Time()
			err := reassignFirstError(store, m.nodes, rng)
			lat.Stop()
			if err != nil {
				a.abort(stat, err)
				return
			}
			nodes = toSet(m.nodes)
			reportQueued()

		case taskStartedMsg:
			running[m.worker] = m.node
			reportRunning()
			go a.watchWorker(m.worker)

		case workerDoneMsg:
			delete(running, m.worker)
			reportRunning()

		case dieMsg:
			logrus.WithFields(logrus.Fields{"jobName": a.cfg.JobName, "reason": m.reason}).
				Info("job scheduler actor terminating")
			return

		case coordinatorDoneMsg:
			return

		case getStatsMsg:
			m.reply <- statsReply{queuedTotal: store.QueuedTotal(), runningCount: len(running)}

		case getEmptyNodesMsg:
			m.reply <- emptyNodes(store, m.available)

		case scheduleLocalMsg:
			func() {
				defer stat.Latency(stats.SchedScheduleLocalLatency_ms).Time().Stop()
				d := scheduleLocal(store, m.available)
				countDecision(stat, d)
				m.reply <- d
			}()
			reportQueued()

		case scheduleRemoteMsg:
			func() {
				defer stat.Latency(stats.SchedScheduleRemoteLatency_ms).Time().Stop()
				d := scheduleRemote(store, m.free)
				countDecision(stat, d)
				m.reply <- d
			}()
			reportQueued()
		}
	}
}

func (a *Actor) watchWorker(w WorkerHandle) {
	select {
	case <-w.Done():
		a.sendAsync(workerDoneMsg{worker: w})
	case <-a.done:
	}
}

// abort implements §7 kinds (1) and (2): count it, log the event, and
// terminate.
func (a *Actor) abort(stat stats.StatsReceiver, err error) {
	switch e := err.(type) {
	case *abortError:
		stat.Scope(string(e.Cause)).Counter(stats.SchedAbortCounter).Inc(1)
		a.cfg.EventSink.Abort(a.cfg.JobName, e.Task, string(e.Cause))
	default:
		stat.Counter(stats.SchedAbortCounter).Inc(1)
		logrus.WithFields(logrus.Fields{"jobName": a.cfg.JobName, "err": err}).
			Error("job scheduler actor aborting")
	}
}

func countDecision(stat stats.StatsReceiver, d sched.Decision) {
	switch d.Kind {
	case sched.NoNodes:
		stat.Counter(stats.SchedNoNodesCounter).Inc(1)
	case sched.NoLocal:
		stat.Counter(stats.SchedNoLocalCounter).Inc(1)
	}
}

func toSet(nodes []cluster.NodeId) map[cluster.NodeId]bool {
	set := make(map[cluster.NodeId]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}

// emptyNodes implements §4.3's GetEmptyNodes.
func emptyNodes(store *sched.Store, available []cluster.NodeId) []cluster.NodeId {
	if store.NoPrefBucket().Queued > 0 {
		return nil
	}
	var out []cluster.NodeId
	for _, n := range available {
		if b := store.Bucket(n); b == nil || b.Queued == 0 {
			out = append(out, n)
		}
	}
	return out
}

// reassignFirstError runs the reassignment engine and returns the first
// abort it produced, if any — reassignment stops surfacing as soon as one
// task proves unschedulable, matching assign_task's own single-abort
// disposition.
func reassignFirstError(store *sched.Store, newNodes []cluster.NodeId, rng *rand.Rand) error {
	errs := reassign(store, newNodes, rng)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
