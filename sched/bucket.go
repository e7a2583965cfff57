package sched

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/twitter/jobsched/cluster"
)

// NoPref is the sentinel node key for the bucket holding tasks with no
// live data-local host.
const NoPref cluster.NodeId = ""

// Bucket is a per-node queue of pending tasks plus two counters: Queued is
// the live count (always len(Tasks)), Lifetime is the count of tasks ever
// placed here and is never decremented by a dequeue.
type Bucket struct {
	Queued   int
	Lifetime int
	Tasks    []*Task // newest at the front
}

func newBucket() *Bucket {
	return &Bucket{}
}

// Push adds t to the front of the bucket and bumps both counters.
func (b *Bucket) Push(t *Task) {
	b.Tasks = append([]*Task{t}, b.Tasks...)
	b.Queued++
	b.Lifetime++
}

// PopFront removes and returns the head task, or nil if empty.
func (b *Bucket) PopFront() *Task {
	if len(b.Tasks) == 0 {
		return nil
	}
	t := b.Tasks[0]
	b.Tasks = b.Tasks[1:]
	b.Queued--
	return t
}

// Remove deletes t from the bucket by identity, decrementing Queued. It is
// used by pop_suitable, which may select a task other than the head.
func (b *Bucket) Remove(t *Task) bool {
	for i, c := range b.Tasks {
		if c == t {
			b.Tasks = append(b.Tasks[:i], b.Tasks[i+1:]...)
			b.Queued--
			return true
		}
	}
	return false
}

func (b *Bucket) String() string {
	return spew.Sprintf("Bucket{queued:%d lifetime:%d tasks:%d}", b.Queued, b.Lifetime, len(b.Tasks))
}

// Store is the mapping from node key (or NoPref) to that node's bucket.
// The NoPref bucket is always present while the store is alive.
type Store struct {
	buckets map[cluster.NodeId]*Bucket
}

// NewStore returns a store with only the NoPref bucket present.
func NewStore() *Store {
	return &Store{buckets: map[cluster.NodeId]*Bucket{NoPref: newBucket()}}
}

// Bucket returns the bucket at key, or nil if none exists yet.
func (s *Store) Bucket(key cluster.NodeId) *Bucket {
	return s.buckets[key]
}

// BucketOrCreate returns the bucket at key, creating an empty one if absent.
func (s *Store) BucketOrCreate(key cluster.NodeId) *Bucket {
	b, ok := s.buckets[key]
	if !ok {
		b = newBucket()
		s.buckets[key] = b
	}
	return b
}

// NoPrefBucket returns the always-present NoPref bucket.
func (s *Store) NoPrefBucket() *Bucket {
	return s.buckets[NoPref]
}

// Keys returns every node key currently holding a bucket, NoPref included.
func (s *Store) Keys() []cluster.NodeId {
	keys := make([]cluster.NodeId, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	return keys
}

// QueuedTotal sums Queued across every bucket, including NoPref.
func (s *Store) QueuedTotal() int {
	total := 0
	for _, b := range s.buckets {
		total += b.Queued
	}
	return total
}

// Reset replaces the store's buckets with kept, plus a freshly rebuilt,
// empty NoPref bucket. Used by the reassignment engine: the NoPref
// bucket is always orphaned by a topology partition and is always
// rebuilt from scratch.
func (s *Store) Reset(kept map[cluster.NodeId]*Bucket) {
	if kept == nil {
		kept = map[cluster.NodeId]*Bucket{}
	}
	kept[NoPref] = newBucket()
	s.buckets = kept
}

// Partition splits the current buckets by membership in live, returning
// the kept map (still referenced by this store) and the flattened list of
// tasks orphaned buckets were holding. NoPref is always orphaned.
func (s *Store) Partition(live map[cluster.NodeId]bool) (kept map[cluster.NodeId]*Bucket, orphanedTasks []*Task) {
	kept = map[cluster.NodeId]*Bucket{}
	for key, b := range s.buckets {
		if key != NoPref && live[key] {
			kept[key] = b
			continue
		}
		orphanedTasks = append(orphanedTasks, b.Tasks...)
	}
	return kept, orphanedTasks
}
