// Command jobsched-demo wires a single job scheduler actor to a fake
// cluster and an arbiter round driver, submits a batch of synthetic
// tasks, and logs every task it schedules as the actor works through its
// backlog. It exists to exercise jobactor/arbiter end-to-end; it is
// not part of the scheduler's core surface.
package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/twitter/jobsched/cmd/jobsched-demo/demo"
	"github.com/twitter/jobsched/common/log/hooks"
)

func main() {
	log.AddHook(hooks.NewContextHook())

	if err := demo.NewRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
