// Package sched defines the value types shared by every component of a
// job's fair scheduler actor: the task descriptor, its per-node buckets,
// and the decision returned by a scheduling attempt.
package sched

import (
	"fmt"

	"github.com/twitter/jobsched/cluster"
)

// Input is one data-local replica of a task, a candidate (url, host) pair.
type Input struct {
	Url  string
	Host cluster.NodeId
}

// Task is the immutable descriptor the coordinator hands the actor via
// NewTask. ChosenInput is the sole mutable field: it is set once by the
// assignment engine and may be rewritten if the task is later moved by
// the reassignment engine.
type Task struct {
	TaskId int64
	Mode   string // short label, diagnostics only

	Inputs []Input // non-empty, ordered; redundant replicas

	TaskBlacklist map[cluster.NodeId]bool // nodes this task must not run on again

	ForceLocal  bool // must run on a node hosting one of Inputs
	ForceRemote bool // must run on a node hosting none of Inputs

	ChosenInput string // set once, by assign_task
}

// Hosts returns the set of node ids that host one of the task's inputs.
func (t *Task) Hosts() map[cluster.NodeId]bool {
	hosts := make(map[cluster.NodeId]bool, len(t.Inputs))
	for _, in := range t.Inputs {
		hosts[in.Host] = true
	}
	return hosts
}

// Blacklisted reports whether node is in the task's blacklist.
func (t *Task) Blacklisted(node cluster.NodeId) bool {
	return t.TaskBlacklist[node]
}

// Clone returns a copy of t, with its own Inputs slice and TaskBlacklist
// map, suitable for moving between buckets;
// the reassignment engine clones before rebinding ChosenInput so the
// original entry in an orphaned bucket is never mutated after it has been
// flattened for re-placement.
func (t *Task) Clone() *Task {
	c := *t
	c.Inputs = append([]Input(nil), t.Inputs...)
	blacklist := make(map[cluster.NodeId]bool, len(t.TaskBlacklist))
	for k, v := range t.TaskBlacklist {
		blacklist[k] = v
	}
	c.TaskBlacklist = blacklist
	return &c
}

// LogFields renders the fields an event-log line about this task should
// carry: (task.mode, task.task_id, inputs) per the External Interfaces
// section. Callers add job_name and cause themselves.
func (t *Task) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"taskId": t.TaskId,
		"mode":   t.Mode,
		"inputs": t.Inputs,
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{id:%d mode:%s inputs:%v forceLocal:%t forceRemote:%t chosen:%q}",
		t.TaskId, t.Mode, t.Inputs, t.ForceLocal, t.ForceRemote, t.ChosenInput)
}
