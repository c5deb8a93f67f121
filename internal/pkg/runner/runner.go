package runner

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sebastienferry/site-purge/internal/pkg/commands"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/metrics"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
)

var (
	ErrBusy      = errors.New("a purge is already pending or running")
	ErrQueueFull = errors.New("command queue is full")
)

type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Job is a snapshot of one purge run.
type Job struct {
	Id       string        `json:"id"`
	State    State         `json:"state"`
	Messages []string      `json:"messages"`
	Report   *purge.Report `json:"report,omitempty"`
	Error    string        `json:"error,omitempty"`
	Created  time.Time     `json:"created"`
	Started  time.Time     `json:"started,omitempty"`
	Finished time.Time     `json:"finished,omitempty"`
}

// Active tells whether the job is still pending or running.
func (j Job) Active() bool {
	return j.State == StatePending || j.State == StateRunning
}

func (j *Job) clone() Job {
	c := *j
	c.Messages = slices.Clone(j.Messages)
	if j.Report != nil {
		report := *j.Report
		report.Collections = slices.Clone(j.Report.Collections)
		c.Report = &report
	}
	return c
}

type Purger interface {
	Purge(ctx context.Context, progress purge.ProgressFunc) (purge.Report, error)
}

// Runner consumes commands and runs at most one purge at a time. It keeps
// the current job, or the last one once finished.
type Runner struct {
	purger   Purger
	commands chan commands.Command

	mu      sync.Mutex
	current *Job
}

func NewRunner(purger Purger, queueSize int) *Runner {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Runner{
		purger:   purger,
		commands: make(chan commands.Command, queueSize),
	}
}

// Commands gives access to the command queue.
func (r *Runner) Commands() chan<- commands.Command {
	return r.commands
}

// Submit registers a new job and enqueues its purge command. It never blocks.
func (r *Runner) Submit() (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.Active() {
		return r.current.clone(), ErrBusy
	}

	job := &Job{
		Id:       uuid.NewString(),
		State:    StatePending,
		Messages: []string{},
		Created:  time.Now().UTC(),
	}

	select {
	case r.commands <- commands.NewCmdPurge(job.Id):
	default:
		return Job{}, ErrQueueFull
	}

	r.current = job
	log.InfoWithFields("purge job submitted", log.Fields{"job": job.Id})
	return job.clone(), nil
}

// Current returns the current or last job.
func (r *Runner) Current() (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Job{}, false
	}
	return r.current.clone(), true
}

// Run processes commands until the context is done or a terminate command
// is received.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-r.commands:
			switch cmd.Id {
			case commands.CmdIdTerminate:
				log.Info("terminate command received")
				return nil
			case commands.CmdIdPurge:
				r.runJob(ctx, cmd.JobId())
			default:
				log.WarnWithFields("unknown command", log.Fields{"command": cmd.Id})
			}
		}
	}
}

func (r *Runner) runJob(ctx context.Context, id string) {

	r.mu.Lock()
	job := r.current
	if job == nil || job.Id != id || job.State != StatePending {
		r.mu.Unlock()
		log.WarnWithFields("no pending job for purge command", log.Fields{"job": id})
		return
	}
	job.State = StateRunning
	job.Started = time.Now().UTC()
	r.mu.Unlock()

	log.InfoWithFields("purge job started", log.Fields{"job": id})

	report, err := r.purger.Purge(ctx, func(message string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		job.Messages = append(job.Messages, message)
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	job.Report = &report
	job.Finished = time.Now().UTC()
	job.State = StateDone
	if err != nil {
		job.Error = err.Error()
	}
	if err != nil || !report.OK() {
		job.State = StateFailed
	}
	metrics.PurgeRunCounter.WithLabelValues(string(job.State)).Inc()

	log.InfoWithFields("purge job finished", log.Fields{
		"job":     id,
		"state":   job.State,
		"deleted": report.Total,
	})
}
