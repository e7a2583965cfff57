package jobactor

import (
	"time"

	"github.com/twitter/jobsched/common/stats"
)

const (
	// DefaultScheduleDeadline is the arbiter-enforced deadline for
	// ScheduleLocal/ScheduleRemote/GetStats round-trips (§4.1).
	DefaultScheduleDeadline = 30 * time.Second

	// DefaultPeerDeadline is the arbiter-enforced deadline for a single
	// peer's GetEmptyNodes call (§4.1, §5).
	DefaultPeerDeadline = 500 * time.Millisecond
)

// Config carries the actor's ambient dependencies and tunables. It follows
// the teacher's SchedulerConfig pattern: a plain struct with documented
// defaults, no flag parsing inside the package.
type Config struct {
	// JobName identifies this job in logs and stats.
	JobName string

	// EventSink receives one line per abort condition (§6, §7). Defaults
	// to a logrus-backed sink if nil.
	EventSink EventSink

	// Stats receives queue-depth, latency, and abort metrics. Defaults to
	// stats.NilStatsReceiver() if nil.
	Stats stats.StatsReceiver

	// MailboxSize bounds how many fire-and-forget messages can queue
	// before NewTask/UpdateNodes/TaskStarted/Die block the caller.
	MailboxSize int
}

func (c Config) withDefaults() Config {
	if c.EventSink == nil {
		c.EventSink = NewLogEventSink()
	}
	if c.Stats == nil {
		c.Stats = stats.NilStatsReceiver()
	}
	if c.MailboxSize == 0 {
		c.MailboxSize = 64
	}
	return c
}
