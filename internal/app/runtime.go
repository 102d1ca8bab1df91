package app

import "os"

// TestModeEnv is set by the shared test bootstrap so binaries linked into
// tests return before opening connections.
const TestModeEnv = "DEVCAMPER_TEST_MODE"

// InTestMode reports whether the process runs under the test bootstrap.
func InTestMode() bool {
	return os.Getenv(TestModeEnv) == "1"
}
