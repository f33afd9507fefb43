// Package schedule defines when the engine's periodic loops fire.
//
// This package includes:
//   - Schedule interface for computing the next firing time
//   - Every() for fixed-interval schedules (the engine defaults)
//   - Daily() for once-a-day schedules at a specific time
//   - Cron() for cron expression-based schedules
//
// Most users should import the root package github.com/nvtuan/mmo-engine
// which re-exports these constructors.
package schedule

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule defines when a periodic loop should run next.
type Schedule interface {
	Next(from time.Time) time.Time
}

// everySchedule runs at fixed intervals.
type everySchedule struct {
	interval time.Duration
}

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return &everySchedule{interval: d}
}

func (s *everySchedule) Next(from time.Time) time.Time {
	return from.Add(s.interval)
}

// dailySchedule runs at a specific time each day.
type dailySchedule struct {
	hour   int
	minute int
	loc    *time.Location
}

// Daily creates a schedule that runs at a specific UTC time each day.
func Daily(hour, minute int) Schedule {
	return &dailySchedule{hour: hour, minute: minute, loc: time.UTC}
}

func (s *dailySchedule) Next(from time.Time) time.Time {
	from = from.In(s.loc)
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// cronSchedule wraps a cron expression.
type cronSchedule struct {
	schedule cron.Schedule
}

// Cron creates a schedule from a standard 5-field cron expression.
func Cron(expr string) (Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronSchedule{schedule: sched}, nil
}

func (s *cronSchedule) Next(from time.Time) time.Time {
	return s.schedule.Next(from)
}
