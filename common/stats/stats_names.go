package stats

/*
This file defines all the metrics being collected.   As new metrics are added please follow this pattern.
*/

const (
	/************************* Job scheduler actor metrics **************************/

	/*
		total queued task count across all buckets, sampled after every mutation
	*/
	SchedQueuedTotalGauge = "schedQueuedTotalGauge"

	/*
		count of worker handles currently in the running set
	*/
	SchedRunningCountGauge = "schedRunningCountGauge"

	/*
		count of new tasks placed into a bucket by NewTask, as one job-wide total (not split per node key)
	*/
	SchedBucketLifetimeCounter = "schedBucketLifetimeCounter"

	/*
		latency of a single ScheduleLocal call
	*/
	SchedScheduleLocalLatency_ms = "schedScheduleLocalLatency_ms"

	/*
		latency of a single ScheduleRemote call
	*/
	SchedScheduleRemoteLatency_ms = "schedScheduleRemoteLatency_ms"

	/*
		latency of a single assign_task call
	*/
	SchedAssignLatency_ms = "schedAssignLatency_ms"

	/*
		latency of a single UpdateNodes reassignment pass
	*/
	SchedReassignLatency_ms = "schedReassignLatency_ms"

	/*
		count of actor aborts, tagged by cause via Scope()
	*/
	SchedAbortCounter = "schedAbortCounter"

	/*
		count of ScheduleLocal/ScheduleRemote calls that returned NoNodes
	*/
	SchedNoNodesCounter = "schedNoNodesCounter"

	/*
		count of ScheduleLocal calls that returned NoLocal
	*/
	SchedNoLocalCounter = "schedNoLocalCounter"

	/*
		count of peer GetEmptyNodes calls that exceeded their deadline
	*/
	SchedPeerTimeoutCounter = "schedPeerTimeoutCounter"

	/*
		count of arbiter-driven schedule rounds that hit the 30s actor deadline
	*/
	SchedScheduleTimeoutCounter = "schedScheduleTimeoutCounter"
)
