// Package aggregator periodically recomputes the fleet-wide movement and
// stem-temperature baselines every decision engine compares its talkers'
// readings against, and publishes them on global/movement and
// global/temperature.
package aggregator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/internal/ttbus"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/log"
)

// Bus is the subset of ttbus.Client the aggregator needs.
type Bus interface {
	Publish(subject string, data []byte) error
}

// Clock is injected so tests can control "now"; production callers pass
// time.Now.
type Clock func() time.Time

// Aggregator runs the periodic fleet-wide baseline recomputation.
type Aggregator struct {
	Store ttstore.Store
	Bus   Bus
	Clock Clock

	// Window is how far back each query looks. original_source's
	// aggregator.py queries the same ANALYSIS_INTERVAL ("2d") as the
	// per-talker checks, not the 7-day historical-only window.
	Window time.Duration

	scheduler gocron.Scheduler
}

// New builds an Aggregator with the default 2-day analysis window.
func New(store ttstore.Store, bus Bus) *Aggregator {
	return &Aggregator{
		Store:  store,
		Bus:    bus,
		Clock:  time.Now,
		Window: policy.AnalysisWindowShort,
	}
}

func (a *Aggregator) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// Start schedules Run to fire every interval via gocron, mirroring the
// teacher's taskManager job-registration idiom. Callers shut the
// scheduler down with Stop.
func (a *Aggregator) Start(ctx context.Context, interval time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	a.scheduler = s

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { a.Run(ctx) }),
	); err != nil {
		return err
	}

	s.Start()
	return nil
}

// Stop shuts the scheduler down.
func (a *Aggregator) Stop() error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Shutdown()
}

// Run performs one aggregation pass: query every talker's recent gravity
// and stem-temperature rows, reduce them to fleet-wide baselines, and
// publish whichever ones had enough data. A query or publish failure for
// one baseline never blocks the other, per spec.md §4.8's "continue
// regardless" clause.
func (a *Aggregator) Run(ctx context.Context) {
	now := a.now()

	if err := a.runMovement(ctx, now); err != nil {
		log.Errorf("aggregator: movement pass failed: %v", err)
	}
	if err := a.runTemperature(ctx, now); err != nil {
		log.Errorf("aggregator: temperature pass failed: %v", err)
	}
}

func (a *Aggregator) runMovement(ctx context.Context, now time.Time) error {
	baseline, ok, err := policy.QueryFleetMovementBaseline(ctx, a.Store, now, a.Window)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("aggregator: no movement data to aggregate")
		return nil
	}

	payload := ttbus.Baseline{
		MeanX: baseline.MeanX, StdevX: baseline.StdevX,
		MeanY: baseline.MeanY, StdevY: baseline.StdevY,
		MeanZ: baseline.MeanZ, StdevZ: baseline.StdevZ,
	}
	return publishJSON(a.Bus, ttbus.GlobalMovement, payload)
}

func (a *Aggregator) runTemperature(ctx context.Context, now time.Time) error {
	baseline, ok, err := policy.QueryFleetTemperatureBaseline(ctx, a.Store, now, a.Window)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("aggregator: no temperature data to aggregate")
		return nil
	}

	payload := ttbus.TemperatureBaseline{
		StdevDeltaCold: baseline.StdevDeltaCold,
		StdevDeltaHot:  baseline.StdevDeltaHot,
	}
	return publishJSON(a.Bus, ttbus.GlobalTemperature, payload)
}

func publishJSON(bus Bus, subject string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return bus.Publish(subject, raw)
}
