package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "cashbox-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "cashbox")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/cashbox")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runCashbox(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// inDir runs a command against an initialized data directory.
func inDir(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runCashbox(t, append([]string{"--dir", dir}, args...)...)
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	log := exec.Command("git", "log", "--format="+format, "-1")
	log.Dir = dir
	out, err := log.Output()
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	return string(out)
}
