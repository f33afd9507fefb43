package mmo

import (
	"time"

	"github.com/nvtuan/mmo-engine/pkg/schedule"
)

// Schedule defines when a periodic engine loop should run next.
type Schedule = schedule.Schedule

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule { return schedule.Every(d) }

// Daily creates a schedule that runs at a specific UTC time each day.
func Daily(hour, minute int) Schedule { return schedule.Daily(hour, minute) }

// Cron creates a schedule from a standard 5-field cron expression.
func Cron(expr string) (Schedule, error) { return schedule.Cron(expr) }
