package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionJobs runs the expiration sweep and the duplicate repair on
// tickers. A zero interval disables that job.
type SessionJobs struct {
	Sweeper           *ExpirationSweeper
	Duplicates        *DuplicateResolver
	SweepInterval     time.Duration
	DuplicateInterval time.Duration
	Log               *logrus.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSessionJobs(sweeper *ExpirationSweeper, duplicates *DuplicateResolver, sweepEvery, duplicateEvery time.Duration, log *logrus.Logger) *SessionJobs {
	return &SessionJobs{
		Sweeper:           sweeper,
		Duplicates:        duplicates,
		SweepInterval:     sweepEvery,
		DuplicateInterval: duplicateEvery,
		Log:               log,
		stopChan:          make(chan struct{}),
	}
}

func (j *SessionJobs) Start() {
	if j.SweepInterval > 0 && j.Sweeper != nil {
		j.run("expiration_sweep", j.SweepInterval, j.sweep)
	}
	if j.DuplicateInterval > 0 && j.Duplicates != nil {
		j.run("duplicate_fix", j.DuplicateInterval, j.fixDuplicates)
	}
}

// Stop signals every job and waits for in-flight passes to return.
func (j *SessionJobs) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	j.wg.Wait()
}

func (j *SessionJobs) run(name string, interval time.Duration, pass func(context.Context)) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		j.Log.WithFields(logrus.Fields{"job": name, "interval": interval.String()}).Info("session job started")
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				pass(ctx)
				cancel()
			case <-j.stopChan:
				j.Log.WithField("job", name).Info("session job stopped")
				return
			}
		}
	}()
}

func (j *SessionJobs) sweep(ctx context.Context) {
	finalized, err := j.Sweeper.FinalizeExpired(ctx)
	if err != nil {
		j.Log.WithError(err).WithField("finalized", len(finalized)).Error("expiration sweep failed")
		return
	}
	if len(finalized) > 0 {
		j.Log.WithField("finalized", len(finalized)).Info("expired sessions finalized")
	}
}

func (j *SessionJobs) fixDuplicates(ctx context.Context) {
	reports, err := j.Duplicates.FixDuplicates(ctx)
	if err != nil {
		j.Log.WithError(err).WithField("tables_fixed", len(reports)).Error("duplicate repair failed")
		return
	}
	if len(reports) > 0 {
		j.Log.WithField("tables_fixed", len(reports)).Warn("duplicate sessions repaired")
	}
}
