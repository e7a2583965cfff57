package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/jobsched/arbiter"
	"github.com/twitter/jobsched/cluster"
	"github.com/twitter/jobsched/common/stats"
	"github.com/twitter/jobsched/jobactor"
	"github.com/twitter/jobsched/sched"
)

func newRunCmd() *cobra.Command {
	var nodeCount, taskCount, maxRounds int
	var jobName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit synthetic tasks to a job scheduler actor and schedule them to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobName == "" {
				jobName = "demo-" + uuid.New().String()[:8]
			}
			return run(jobName, nodeCount, taskCount, maxRounds)
		},
	}

	cmd.Flags().IntVar(&nodeCount, "nodes", 5, "number of synthetic worker nodes")
	cmd.Flags().IntVar(&taskCount, "tasks", 10, "number of synthetic tasks to submit")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 50, "scheduling rounds to attempt before giving up")
	cmd.Flags().StringVar(&jobName, "job-name", "", "job name (default: a generated id)")
	return cmd
}

func run(jobName string, nodeCount, taskCount, maxRounds int) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	nodes := make([]cluster.NodeId, nodeCount)
	for i := range nodes {
		nodes[i] = cluster.NodeId(fmt.Sprintf("node-%d", i))
	}

	coordinator, stopCoordinator := jobactor.NewCoordinator()
	defer stopCoordinator()

	stat := stats.DefaultStatsReceiver()
	actor := jobactor.NewActor(jobactor.Config{
		JobName: jobName,
		Stats:   stat,
	}, coordinator, nodes)

	for i := 0; i < taskCount; i++ {
		task, nodeStats := syntheticTask(int64(i), nodes, rng)
		actor.NewTask(task, nodeStats)
	}
	log.WithFields(log.Fields{"jobName": jobName, "tasks": taskCount, "nodes": nodeCount}).
		Info("submitted synthetic backlog")

	consecutiveNoNodes := 0
rounds:
	for round := 0; round < maxRounds; round++ {
		ctx, cancel := context.WithTimeout(context.Background(), arbiter.ScheduleDeadline)
		decision := arbiter.RoundWithStats(ctx, actor, nil, nodes, actor, stat)
		cancel()

		switch decision.Kind {
		case sched.Run:
			log.WithFields(log.Fields{"round": round, "node": decision.Node, "taskId": decision.Task.TaskId}).
				Info("scheduled task")
			completeInstantly(actor, decision.Node, decision.Task)
			consecutiveNoNodes = 0
		default:
			consecutiveNoNodes++
			if consecutiveNoNodes > 2 {
				log.WithField("round", round).Info("backlog drained")
				break rounds
			}
		}
	}

	queuedTotal, runningCount, err := actor.GetStats(context.Background())
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"queuedTotal": queuedTotal, "runningCount": runningCount}).Info("final actor stats")
	fmt.Println(string(stat.Render(true)))
	return nil
}

func syntheticTask(id int64, nodes []cluster.NodeId, rng *rand.Rand) (*sched.Task, []sched.NodeStat) {
	inputCount := 1 + rng.Intn(2)
	inputs := make([]sched.Input, inputCount)
	nodeStats := make([]sched.NodeStat, inputCount)
	for i := 0; i < inputCount; i++ {
		host := nodes[rng.Intn(len(nodes))]
		url := fmt.Sprintf("blob://%s/task-%d-part-%d", host, id, i)
		inputs[i] = sched.Input{Url: url, Host: host}
		nodeStats[i] = sched.NodeStat{Load: rng.Intn(20), Input: inputs[i]}
	}
	return &sched.Task{
		TaskId: id,
		Mode:   "demo",
		Inputs: inputs,
	}, nodeStats
}

// completeInstantly simulates a worker that starts and finishes
// immediately, so GetStats' running_count visibly rises and falls across
// a demo run instead of only ever climbing.
func completeInstantly(actor *jobactor.Actor, node cluster.NodeId, task *sched.Task) {
	handle, terminate := jobactor.NewWorkerHandle(fmt.Sprintf("worker-%d", task.TaskId))
	actor.TaskStarted(node, handle)
	terminate()
}
