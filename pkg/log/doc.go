/*
Package log provides structured logging for deployctl using zerolog.

Two surfaces live here. The global logger wraps zerolog for console or JSON
output on stderr, with component-scoped child loggers, and is what packages
use for operator-facing progress output. The Session logger writes an audit
trail of one CLI invocation as JSON lines into a per-day file.

# Global Logger

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: false})
	log.Info("validation passed")

	vlog := log.WithComponent("validator")
	vlog.Debug().Str("check", "credentials").Msg("check passed")

# Session Files

One file per calendar day (deploy-2026-08-31.log), each line a structured
record:

	{"level":"info","session_id":"...","event_type":"deploy_start",
	 "time":"...","message":"starting deployment"}

A literal {"separator":"---"} line is written when a session opens, marking
the boundary between invocations.  ReadSessionLines filters these out, so
readers only ever see structured records. Closing a session appends a
session_summary event with per-level event counts and the total duration.
*/
package log
