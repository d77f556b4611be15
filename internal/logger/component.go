package logger

import "github.com/charmbracelet/log"

// Store returns a logger for entity store operations
func Store() *log.Logger {
	return Component("store")
}

// Remote returns a logger for persistence API calls
func Remote() *log.Logger {
	return Component("remote")
}

// Session returns a logger for identity reconciliation
func Session() *log.Logger {
	return Component("session")
}

// Tracker returns a logger for engine mutations
func Tracker() *log.Logger {
	return Component("tracker")
}

// Auth returns a logger for identity sources
func Auth() *log.Logger {
	return Component("auth")
}

// DB returns a logger for local state operations
func DB() *log.Logger {
	return Component("db")
}

// Backup returns a logger for local state snapshots
func Backup() *log.Logger {
	return Component("backup")
}
