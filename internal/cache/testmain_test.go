package cache

import (
	"os"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// views cancel fetches from other goroutines; none may outlive a test
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}
