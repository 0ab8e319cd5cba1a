// Package guard puts test binaries into test mode. Import it for side
// effects from any test that may reach a cmd entry point.
package guard

import "os"

func init() {
	if os.Getenv("ODYSSEY_TEST_MODE") == "" {
		_ = os.Setenv("ODYSSEY_TEST_MODE", "1")
	}
	// Tests never reach a real Redis; an empty address disables the cache.
	if _, ok := os.LookupEnv("REDIS_ADDR"); !ok {
		_ = os.Setenv("REDIS_ADDR", "")
	}
}
