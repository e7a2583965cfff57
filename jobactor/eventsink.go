package jobactor

import (
	"github.com/sirupsen/logrus"

	"github.com/twitter/jobsched/sched"
)

// logEventSink is the default EventSink: one structured log line per abort
// condition, carrying (job_name, task.mode, task.task_id, cause, inputs)
// per §6.
type logEventSink struct {
	log logrus.FieldLogger
}

// NewLogEventSink returns an EventSink that logs through logrus's default
// logger, or through log if provided.
func NewLogEventSink(log ...logrus.FieldLogger) EventSink {
	if len(log) > 0 && log[0] != nil {
		return &logEventSink{log: log[0]}
	}
	return &logEventSink{log: logrus.StandardLogger()}
}

func (s *logEventSink) Abort(jobName string, t *sched.Task, cause string) {
	fields := logrus.Fields{
		"jobName": jobName,
		"cause":   cause,
	}
	for k, v := range t.LogFields() {
		fields[k] = v
	}
	s.log.WithFields(fields).Error("job scheduler actor aborting")
}
