// Package testing holds shared test bootstrap for packages that import it
// for side effects.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/odyssey-erp/odyssey-ledger/internal/testing/guard"
)

// TestMain runs the suite with test mode already switched on by guard.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
