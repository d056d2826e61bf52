package sweeper

import (
	"os"
	"testing"

	"github.com/mintbay/marketplace/internal/logger"
)

// TestMain initializes the global logger the sweeper logs through; without it
// every logger call in the package under test panics on a nil *zap.Logger.
func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
