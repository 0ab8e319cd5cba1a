package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

// TestModeEnv makes the binaries return before touching PostgreSQL, Redis or
// the queue. internal/testing/guard sets it for test binaries.
const TestModeEnv = "ODYSSEY_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether runtime side effects should be skipped.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode rereads the environment and returns the new value.
func RefreshTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	on = on && err == nil
	testMode.Store(&on)
	return on
}
