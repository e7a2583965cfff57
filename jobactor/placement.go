package jobactor

import (
	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// chooseNode implements the placement-feasibility predicate of §4.2: given
// a task and a candidate node set (in caller-supplied priority order),
// decide whether any node is admissible and return the first one.
//
// Force-local tasks are never considered here — they are placed once by
// the assignment engine and are excluded from every "move this task to
// another node" path, including victim selection.
func chooseNode(t *sched.Task, available []cluster.NodeId) (cluster.NodeId, bool) {
	if t.ForceLocal {
		return "", false
	}

	candidates := exclude(available, t.TaskBlacklist)
	if len(candidates) == 0 {
		return "", false
	}

	if t.ForceRemote {
		remote := exclude(candidates, t.Hosts())
		if len(remote) == 0 {
			return "", false
		}
		return remote[0], true
	}

	return candidates[0], true
}

// exclude returns the elements of available not present in drop, preserving
// order. A nil/empty drop set returns available unchanged.
func exclude(available []cluster.NodeId, drop map[cluster.NodeId]bool) []cluster.NodeId {
	if len(drop) == 0 {
		return available
	}
	out := make([]cluster.NodeId, 0, len(available))
	for _, n := range available {
		if !drop[n] {
			out = append(out, n)
		}
	}
	return out
}
