package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnix(t *testing.T) {
	assert.Equal(t, "-", FormatUnix(0))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), FormatUnix(ts.Unix()))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "garbage", FormatTime("garbage"))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), FormatTime(ts.Format(time.RFC3339)))
}
