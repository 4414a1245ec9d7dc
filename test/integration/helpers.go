//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Server     string
	Username   string
	Password   string
	OshiftPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Server:     os.Getenv("OSHIFT_SERVER"),
		Username:   os.Getenv("OSHIFT_USERNAME"),
		Password:   os.Getenv("OSHIFT_PASSWORD"),
		OshiftPath: getOshiftPath(),
		Verbose:    os.Getenv("OSHIFT_TEST_VERBOSE") == "true",
	}
}

// getOshiftPath determines the path to the oshift binary
func getOshiftPath() string {
	if path := os.Getenv("OSHIFT_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../oshift",
		"./oshift",
		"../oshift",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "oshift"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.Server == "" || config.Username == "" || config.Password == "" {
		t.Skip("OSHIFT_SERVER, OSHIFT_USERNAME or OSHIFT_PASSWORD not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.OshiftPath); err != nil {
		t.Skipf("oshift binary not found at %s, skipping integration test", config.OshiftPath)
	}
}

// CommandRunner runs the oshift binary against the configured broker with
// an isolated configuration file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes an oshift command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.OshiftPath, args...)
	cmd.Env = append(os.Environ(),
		"OSHIFT_SERVER="+runner.config.Server,
		"OSHIFT_USERNAME="+runner.config.Username,
		"OSHIFT_PASSWORD="+runner.config.Password,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.OshiftPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique alphanumeric resource name. Domain and
// application names must be short and alphanumeric.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().Unix()%100000000)
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(resourceType, name string, extra ...string) {
	var args []string

	switch resourceType {
	case "domain":
		args = []string{"domains", "delete", name, "--force"}
	case "app":
		args = append([]string{"apps", "delete", name}, extra...)
	case "key":
		args = []string{"keys", "delete", name}
	default:
		runner.t.Logf("Unknown resource type for cleanup: %s", resourceType)

		return
	}

	stdout, stderr, err := runner.Run(args...)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", resourceType, name, stdout, stderr)
	}
}
