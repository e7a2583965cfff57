package arbiter

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/common/stats"
)

// GetEmptyNodes implements the cross-job half of §4.4's scheduleRemote
// fallback: ask every peer job which of available it holds no local work
// for, and intersect the answers, so the calling job only displaces onto
// nodes that no job wants for locality.
//
// A peer is queried with its own PeerDeadline-bounded context and a
// couple of quick backoff retries to absorb a momentarily full actor
// mailbox; a peer that still hasn't answered when the deadline passes is
// treated as claiming every node in available, per the teacher's
// "slow peer forfeits, doesn't block" convention in cluster_state.go's
// startReadyLoop.
func GetEmptyNodes(ctx context.Context, peers []PeerScheduler, available []cluster.NodeId, stat stats.StatsReceiver) []cluster.NodeId {
	if len(peers) == 0 {
		return available
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}

	type peerResult struct {
		nodes []cluster.NodeId
		ok    bool
	}
	results := make(chan peerResult, len(peers))

	for _, p := range peers {
		go func(p PeerScheduler) {
			nodes, err := queryPeer(ctx, p, available)
			if err != nil {
				stat.Counter(stats.SchedPeerTimeoutCounter).Inc(1)
				results <- peerResult{ok: false}
				return
			}
			results <- peerResult{nodes: nodes, ok: true}
		}(p)
	}

	empty := toSet(available)
	for i := 0; i < len(peers); i++ {
		r := <-results
		if !r.ok {
			continue
		}
		intersect(empty, r.nodes)
	}
	return fromSet(available, empty)
}

func queryPeer(ctx context.Context, p PeerScheduler, available []cluster.NodeId) ([]cluster.NodeId, error) {
	peerCtx, cancel := context.WithTimeout(ctx, PeerDeadline)
	defer cancel()

	var nodes []cluster.NodeId
	op := func() error {
		n, err := p.GetEmptyNodes(peerCtx, available)
		if err != nil {
			return err
		}
		nodes = n
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(20*time.Millisecond), 3)
	if err := backoff.Retry(op, b); err != nil {
		logrus.WithFields(logrus.Fields{"err": err}).Debug("peer did not answer GetEmptyNodes in time")
		return nil, err
	}
	return nodes, nil
}

func toSet(nodes []cluster.NodeId) map[cluster.NodeId]bool {
	set := make(map[cluster.NodeId]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}

// intersect drops from empty every node not present in claimed, in place.
func intersect(empty map[cluster.NodeId]bool, claimed []cluster.NodeId) {
	claimedSet := toSet(claimed)
	for n := range empty {
		if !claimedSet[n] {
			delete(empty, n)
		}
	}
}

func fromSet(ordered []cluster.NodeId, set map[cluster.NodeId]bool) []cluster.NodeId {
	var out []cluster.NodeId
	for _, n := range ordered {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}
