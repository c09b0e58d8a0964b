package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("hello %d", 42)
	if got != "hello 42" {
		t.Errorf("Logf output = %q, want %q", got, "hello 42")
	}
}

func TestSetLoggerNilIsNoop(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("dropped %s", "message")
}

func TestDebugfRespectsVerbose(t *testing.T) {
	defer SetLogger(nil)
	defer func() { Verbose = false }()

	var calls int
	SetLogger(func(format string, v ...interface{}) { calls++ })

	Verbose = false
	Debugf("quiet")
	if calls != 0 {
		t.Errorf("Debugf logged %d times with Verbose off", calls)
	}

	Verbose = true
	Debugf("loud")
	if calls != 1 {
		t.Errorf("Debugf logged %d times with Verbose on, want 1", calls)
	}
}
