package activationrpc

import "time"

// TimeLayout is the format of lastUpdateTime in HTTP responses (UTC).
const TimeLayout = "2006/01/02 15:04:05"

// FormatTime renders t in TimeLayout after converting it to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
