// Package janitor runs the scheduled preference cleanup.
package janitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Cleaner removes stale data and reports how much it removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type Janitor struct {
	cron    *cron.Cron
	cleaner Cleaner
	timeout time.Duration
}

// New schedules cleaner on spec, a six-field cron expression with seconds.
func New(spec string, cleaner Cleaner) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(cron.WithSeconds()),
		cleaner: cleaner,
		timeout: time.Minute,
	}
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return nil, fmt.Errorf("scheduling cleanup %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
	log.Println("janitor: preference cleanup scheduled")
}

// Stop waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Run performs one cleanup pass.
func (j *Janitor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.cleaner.Cleanup(ctx); err != nil {
		log.Printf("janitor: %v", err)
	}
}
