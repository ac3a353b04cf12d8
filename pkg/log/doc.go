// Package log captures CWMP protocol traffic and state machine activity per
// device session.
//
// It is separate from operational logging (slog). Protocol capture records
// every message exchanged with an eNodeB and every state transition of its
// session, in a machine-readable form suitable for replaying a
// misbehaving device's history.
//
// # Basic Usage
//
//	// Console, at debug level
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	logger, _ := log.NewFileLogger("/var/log/enodebd/capture.elog")
//
//	// Both
//	logger := log.NewMultiLogger(console, file)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded Events with integer keys.
// Use Reader, optionally with a Filter, to iterate over them.
package log
