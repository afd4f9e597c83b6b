// Package timeutil formats store timestamps for CLI output.
package timeutil

import "time"

// LocalTimeFormat is used for every timestamp storectl prints.
const LocalTimeFormat = "2006-01-02 15:04:05"

// FormatUnix renders Unix seconds in local time. Zero means unset and
// renders as "-".
func FormatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).Local().Format(LocalTimeFormat)
}

// FormatTime renders an RFC 3339 timestamp in local time, or returns it
// unchanged if it does not parse.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(LocalTimeFormat)
}
