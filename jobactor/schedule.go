package jobactor

import (
	"sort"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/sched"
)

// scheduleLocal implements §4.4's two-phase local algorithm, phase one.
func scheduleLocal(store *sched.Store, available []cluster.NodeId) sched.Decision {
	local := localCandidates(store, available)
	if len(local) > 0 {
		n := leastLoaded(local, store)
		b := store.Bucket(n)
		t := b.PopFront()
		return sched.RunDecision(n, t)
	}

	if store.NoPrefBucket().Queued == 0 {
		return sched.NoLocalDecision()
	}

	return popAndSwitchNode([]cluster.NodeId{sched.NoPref}, available, store)
}

// scheduleRemote implements §4.4's phase two: victim selection over every
// node this job holds data-local work at, targeting free (cross-job empty)
// nodes computed by the arbiter.
func scheduleRemote(store *sched.Store, free []cluster.NodeId) sched.Decision {
	victims := displacementCandidates(store)
	return popAndSwitchNode(victims, free, store)
}

// localCandidates returns the subset of available for which this job holds
// data-local pending work (bucket exists, Queued > 0).
func localCandidates(store *sched.Store, available []cluster.NodeId) []cluster.NodeId {
	var local []cluster.NodeId
	for _, n := range available {
		if b := store.Bucket(n); b != nil && b.Queued > 0 {
			local = append(local, n)
		}
	}
	return local
}

// displacementCandidates returns every node key (NoPref excluded) whose
// bucket currently has queued work — candidates to give up a task from.
func displacementCandidates(store *sched.Store) []cluster.NodeId {
	var nodes []cluster.NodeId
	for _, k := range store.Keys() {
		if k == sched.NoPref {
			continue
		}
		if b := store.Bucket(k); b != nil && b.Queued > 0 {
			nodes = append(nodes, k)
		}
	}
	return nodes
}

// leastLoaded returns the node in candidates whose bucket has the smallest
// Queued count; this is only called with candidates produced by
// localCandidates, so every entry already has a bucket.
func leastLoaded(candidates []cluster.NodeId, store *sched.Store) cluster.NodeId {
	best := candidates[0]
	bestQueued := store.Bucket(best).Queued
	for _, n := range candidates[1:] {
		if q := store.Bucket(n).Queued; q < bestQueued {
			best, bestQueued = n, q
		}
	}
	return best
}

// popAndSwitchNode implements §4.4's victim selection: pick the busiest
// bucket among nodes, pop its head task, and try to place it on available;
// fall back to pop_suitable on failure. nodes is sorted once here so both
// steps walk the same deterministic order — nodes typically arrives from
// store.Keys(), which ranges a map and so has no order of its own.
func popAndSwitchNode(nodes []cluster.NodeId, available []cluster.NodeId, store *sched.Store) sched.Decision {
	if len(available) == 0 {
		return sched.NoNodesDecision()
	}

	ordered := append([]cluster.NodeId(nil), nodes...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	victim := busiest(ordered, store)
	b := store.Bucket(victim)
	// "" is both busiest's "no candidate" answer and the NoPref key, so it
	// names a victim only when NoPref was a candidate and holds work.
	if victim == sched.NoPref {
		candidate := false
		for _, n := range ordered {
			candidate = candidate || n == sched.NoPref
		}
		if !candidate || b.Queued == 0 {
			return sched.NoNodesDecision()
		}
	}

	head := b.Tasks[0]
	if target, ok := chooseNode(head, available); ok {
		b.PopFront()
		return sched.RunDecision(target, head)
	}

	return popSuitable(ordered, available, store)
}

// busiest picks the node whose bucket has the largest Queued count among
// nodes, breaking ties by node identity order. Returns "" if none of the
// candidate buckets holds any work.
func busiest(nodes []cluster.NodeId, store *sched.Store) cluster.NodeId {
	ordered := append([]cluster.NodeId(nil), nodes...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var best cluster.NodeId
	bestQueued := -1
	for _, n := range ordered {
		b := store.Bucket(n)
		if b == nil || b.Queued == 0 {
			continue
		}
		if b.Queued > bestQueued {
			bestQueued = b.Queued
			best = n
		}
	}
	return best
}

// popSuitable implements §4.4's pop_suitable: a linear walk of nodes, and
// within each, its task list in order, returning the first task admissible
// under available. Removal is atomic with the returned decision.
func popSuitable(nodes []cluster.NodeId, available []cluster.NodeId, store *sched.Store) sched.Decision {
	for _, n := range nodes {
		b := store.Bucket(n)
		if b == nil {
			continue
		}
		for _, t := range b.Tasks {
			if target, ok := chooseNode(t, available); ok {
				b.Remove(t)
				return sched.RunDecision(target, t)
			}
		}
	}
	return sched.NoNodesDecision()
}
