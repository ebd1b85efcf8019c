package vips

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type logRecord struct {
	domain  string
	level   LogLevel
	message string
}

func TestHandleGLog(t *testing.T) {
	var records []logRecord
	SetLogging(func(domain string, level LogLevel, message string) {
		records = append(records, logRecord{domain, level, message})
	}, LogLevelWarning)
	t.Cleanup(func() {
		SetLogging(func(string, LogLevel, string) {}, 0)
	})

	handleGLog("VIPS", int(LogLevelWarning), "vips_tiffsave: unknown option")
	handleGLog("", int(LogLevelCritical)|gLogFlags, "assertion failed")
	handleGLog("VIPS", int(LogLevelInfo), "threadpool started")
	handleGLog("VIPS", int(LogLevelDebug), "cache miss")

	assert.Equal(t, []logRecord{
		{"VIPS", LogLevelWarning, "vips_tiffsave: unknown option"},
		{"VIPS", LogLevelCritical, "assertion failed"},
	}, records)
}

func TestSetLoggingNilHandler(t *testing.T) {
	var n int
	SetLogging(func(string, LogLevel, string) { n++ }, LogLevelDebug)
	SetLogging(nil, LogLevelError)
	t.Cleanup(func() {
		SetLogging(func(string, LogLevel, string) {}, 0)
	})
	handleGLog("VIPS", int(LogLevelError), "out of memory")
	handleGLog("VIPS", int(LogLevelWarning), "ignored")
	assert.Equal(t, 1, n)
}
