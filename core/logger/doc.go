// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber admin server.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID (request ID) from a Fiber context
// and attaches it to the log entry, ensuring that all logs related to a
// specific request can be correlated. WithRun does the same for sync runs,
// attaching the run ID and sync type so that every log line produced during
// a run can be traced back to its SyncEvent record.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	// In a sync run:
//	l := logger.WithRun(log, runID, "products")
//	l.Error("Group failed", zap.Error(err))
package logger
