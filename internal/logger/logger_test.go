package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer and restores the
// previous writer on cleanup.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.Lock()
	origOutput, origColor := output, useColor
	mu.Unlock()
	origLevel := Level(currentLevel.Load())
	origFormat, _ := currentFormat.Load().(string)

	InitWithWriter(buf, "DEBUG", "text", false)

	t.Cleanup(func() {
		InitWithWriter(origOutput, origLevel.String(), origFormat, origColor)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		for _, s := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug message", "error message"} {
			assert.Contains(t, out, s)
		}
	})

	t.Run("WarnLevelFiltersDebugAndInfo", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("WARN")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("InvalidLevelIsIgnored", func(t *testing.T) {
		captureOutput(t)
		SetLevel("ERROR")
		SetLevel("verbose")
		assert.Equal(t, LevelError, Level(currentLevel.Load()))
	})
}

func TestTextFormat(t *testing.T) {
	buf := captureOutput(t)

	Info("client connected", KeyClientIP, "10.0.0.1", KeySize, 42, "note", "two words")

	line := buf.String()
	assert.Contains(t, line, "[INFO] client connected")
	assert.Contains(t, line, "client_ip=10.0.0.1")
	assert.Contains(t, line, "size=42")
	assert.Contains(t, line, `note="two words"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestGroupsArePrefixed(t *testing.T) {
	buf := captureOutput(t)

	With("conn", "c1").WithGroup("upload").Info("chunk", "offset", 10)

	line := buf.String()
	assert.Contains(t, line, "conn=c1")
	assert.Contains(t, line, "upload.offset=10")
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("json")

	Warn("login failed", KeyUsername, "alice", KeyAttempt, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "login failed", rec["msg"])
	assert.Equal(t, "alice", rec[KeyUsername])
	assert.EqualValues(t, 2, rec[KeyAttempt])
}

func TestContextFields(t *testing.T) {
	buf := captureOutput(t)

	lc := NewLogContext("c-7", "192.0.2.4").WithUser("bob").WithKind("Login")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "handled", KeyStatusMsg, "ok")

	line := buf.String()
	assert.Contains(t, line, "conn_id=c-7")
	assert.Contains(t, line, "client_ip=192.0.2.4")
	assert.Contains(t, line, "username=bob")
	assert.Contains(t, line, "kind=Login")
	assert.Less(t, strings.Index(line, "conn_id"), strings.Index(line, "status_msg"))
}

func TestLogContextCloneIsIndependent(t *testing.T) {
	lc := NewLogContext("c-1", "127.0.0.1")
	other := lc.WithUser("carol")

	assert.Equal(t, "anonymous", lc.Username)
	assert.Equal(t, "carol", other.Username)
	assert.Nil(t, FromContext(context.Background()))
}

func TestErrAttr(t *testing.T) {
	buf := captureOutput(t)

	Error("boom", Err(assert.AnError))
	Info("fine", Err(nil))

	out := buf.String()
	assert.Contains(t, out, "error=")
	assert.NotContains(t, strings.Split(out, "\n")[1], "error=")
}
