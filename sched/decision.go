package sched

import (
	"fmt"

	"github.com/twitter/jobsched/cluster"
)

// DecisionKind tags the outcome of a scheduling attempt.
type DecisionKind int

const (
	// NoNodes means the actor has pending work but no admissible
	// placement in the given node set.
	NoNodes DecisionKind = iota
	// NoLocal means the actor has no data-local tasks for the given
	// node set; the caller may retry with the empty-node fallback.
	NoLocal
	// Run means Node/Task is a valid placement.
	Run
)

func (k DecisionKind) String() string {
	switch k {
	case NoNodes:
		return "NoNodes"
	case NoLocal:
		return "NoLocal"
	case Run:
		return "Run"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the tagged result of ScheduleLocal/ScheduleRemote.
type Decision struct {
	Kind DecisionKind
	Node cluster.NodeId // only meaningful when Kind == Run
	Task *Task           // only meaningful when Kind == Run
}

func RunDecision(node cluster.NodeId, task *Task) Decision {
	return Decision{Kind: Run, Node: node, Task: task}
}

func NoNodesDecision() Decision { return Decision{Kind: NoNodes} }
func NoLocalDecision() Decision { return Decision{Kind: NoLocal} }

func (d Decision) String() string {
	if d.Kind != Run {
		return d.Kind.String()
	}
	return fmt.Sprintf("Run(node:%s, task:%v)", d.Node, d.Task)
}

// NodeStat is one (load, input) entry the coordinator supplies with a new
// task: load is an opaque, smaller-is-less-loaded signal for that input's
// host.
type NodeStat struct {
	Load  int
	Input Input
}
