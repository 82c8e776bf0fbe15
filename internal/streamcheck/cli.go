package streamcheck

import "os"

// ShowHelp prints usage information for the stream check tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Dashboard Stream Check
======================

Connects to a running dashboard, reads snapshots from /ws and verifies
the bounds, window, ordering and projection invariants of every frame.

Usage:
  go run ./cmd/stream-check [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -frames int
        Number of frames to verify after the first (default 20)
  -timeout duration
        Per-frame and per-request timeout (default 10s)
  -dial-timeout duration
        Give up dialing after this long (default 30s)
  -verbose
        Log every frame
  -help
        Show this help message

Exit status is 1 when an invariant is violated and 2 when the stream
could not be read.
`)
}
