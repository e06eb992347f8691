// Package jobs schedules the gateway's background work: the HITL expiry sweep
// and the shipment status poller.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

// jobTimeout bounds one run of any scheduled job.
const jobTimeout = 60 * time.Second

// Runner owns the cron scheduler and the jobs mounted on it.
type Runner struct {
	cron *cron.Cron
	loc  *time.Location
	out  io.Writer
}

// NewRunner creates a stopped scheduler in the given location.
func NewRunner(loc *time.Location) *Runner {
	return &Runner{
		cron: cron.New(cron.WithLocation(loc)),
		loc:  loc,
		out:  os.Stdout,
	}
}

// AddApprovalSweep schedules the HITL expiry sweep: requests pending past the
// deadline are escalated so they never silently rot in the queue.
func (r *Runner) AddApprovalSweep(spec string, svc service.ApprovalService) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := svc.SweepExpired(ctx)
		r.logRun("approval_sweep", n, err)
	})
	return err
}

// AddShipmentPoller schedules the fulfillment status poller that walks active
// shipments one lifecycle step forward.
func (r *Runner) AddShipmentPoller(spec string, svc service.FulfillmentService) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := svc.AdvanceActive(ctx)
		r.logRun("shipment_poll", n, err)
	})
	return err
}

// Start launches the scheduler in its own goroutine.
func (r *Runner) Start() { r.cron.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Runner) logRun(job string, affected int, err error) {
	entry := map[string]any{
		"ts":       time.Now().In(r.loc).Format(time.RFC3339Nano),
		"level":    "info",
		"msg":      "job_run",
		"job":      job,
		"affected": affected,
	}
	if err != nil {
		entry["level"] = "error"
		entry["error"] = err.Error()
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		fmt.Fprintln(r.out, string(b))
	}
}
