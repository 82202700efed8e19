package api

import "time"

// HTTPMetrics observes API traffic. A nil HTTPMetrics disables collection.
type HTTPMetrics interface {
	// RecordHTTPRequest records one served request. route is the matched
	// route pattern, not the raw path.
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}
