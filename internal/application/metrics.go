package application

import "expvar"

// stats is published at /debug/vars under "auth".
var stats = expvar.NewMap("auth")

func countOutcome(flow string, err error) {
	if err == nil {
		stats.Add(flow+"_ok", 1)
		return
	}
	stats.Add(flow+"_failed", 1)
}
