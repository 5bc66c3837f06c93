package api

import "time"

// RequestLog describes one finished backend call. Status is zero and Err is
// set when no response arrived.
type RequestLog struct {
	ID      string
	Method  string
	URL     string
	Headers map[string][]string
	Status  int
	Elapsed time.Duration
	Err     string
}

// Failed reports whether the call got no response or a non-2xx one.
func (l RequestLog) Failed() bool {
	return l.Status == 0 || l.Status >= 300
}

type RequestLogger func(RequestLog)
