// Package model defines shared data structures.
package model

import "time"

// Config defines launcher settings after merging flags and the config file.
type Config struct {
	HistorySize     int
	AutoRefresh     bool
	RefreshInterval time.Duration
	SaveFile        string
	DBPath          string
	UsePath         bool
	CommandFiles    []string
	Scope           []string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since   *time.Time
	Top     int
	Command string
}

// Invocation records one launched command.
type Invocation struct {
	ID         int64
	Command    string
	Args       string
	Scope      string
	InvokedAt  time.Time
	ExitCode   int
	DurationMs int64
}

// CommandStat aggregates invocations of one command.
type CommandStat struct {
	Command     string
	Count       int
	Failures    int
	LastInvoked time.Time
	TotalMs     int64
}

// DayCount is the number of invocations on one local calendar day.
type DayCount struct {
	Day   time.Time
	Count int
}
