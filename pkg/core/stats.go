package core

import "time"

// EngineStats is the aggregated status snapshot recomputed on every stats
// tick. It is a value copy: readers never observe a partially updated
// snapshot.
type EngineStats struct {
	TotalAccounts     int           `json:"total_accounts"`
	ActiveAccounts    int           `json:"active_accounts"`
	TodayJobs         int           `json:"today_jobs"`
	TotalEarnings     float64       `json:"total_earnings"`
	Uptime            time.Duration `json:"uptime"`
	MemoryMB          uint64        `json:"memory_mb"`
	ProxyConnected    bool          `json:"proxy_connected"`
	DatabaseConnected bool          `json:"database_connected"`
}
