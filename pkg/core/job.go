package core

import (
	"time"
)

// JobStatus represents the current state of an earning job.
type JobStatus string

const (
	JobAvailable JobStatus = "Available"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
)

// Job is one task fetched from a remote job platform. Jobs live only in
// process memory; the remote platform stays the system of record, so a job
// whose accept call fails simply reappears on a later fetch.
type Job struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reward      float64    `json:"reward"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PlatformConfig describes one remote job-platform endpoint. Loaded once
// from configuration and never mutated afterwards.
type PlatformConfig struct {
	Name      string  `yaml:"name" json:"name"`
	BaseURL   string  `yaml:"base_url" json:"base_url"`
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	APIKey    string  `yaml:"api_key" json:"-"`
	MinReward float64 `yaml:"min_reward" json:"min_reward"`
	MaxReward float64 `yaml:"max_reward" json:"max_reward"`
}
