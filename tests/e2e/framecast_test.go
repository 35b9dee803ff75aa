// Package e2e contains end-to-end tests for the framecast CLI.
// These tests build the binary and run full encode/decode round trips
// against the system FFmpeg, so they are opt-in.
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "framecast-test.exe"
	}
	return "framecast-test"
}

// getBinaryPath returns the path to execute the test binary
// If FRAMECAST_BINARY env var is set, use that instead (for CI with pre-built binaries)
func getBinaryPath() string {
	if path := os.Getenv("FRAMECAST_BINARY"); path != "" {
		return path
	}
	if runtime.GOOS == "windows" {
		return ".\\framecast-test.exe"
	}
	return "./framecast-test"
}

func shouldBuildBinary() bool {
	return os.Getenv("FRAMECAST_BINARY") == ""
}

func skipUnlessE2E(t *testing.T) {
	if os.Getenv("FRAMECAST_E2E") != "1" {
		t.Skip("Skipping E2E test (set FRAMECAST_E2E=1 to run)")
	}
}

func buildBinary(t *testing.T) {
	if !shouldBuildBinary() {
		return
	}
	buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/framecast")
	buildCmd.Dir = getProjectRoot(t)
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	t.Cleanup(func() {
		os.Remove(filepath.Join(getProjectRoot(t), getBinaryName()))
	})
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	cmd := exec.Command(getBinaryPath(), args...)
	cmd.Dir = getProjectRoot(t)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestSynthCommand encodes a synthetic animation and verifies the MP4 output.
func TestSynthCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	tmpFile, err := os.CreateTemp("", "framecast-e2e-*.mp4")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	stdout, stderr, err := runCLI(t,
		"synth",
		"-o", tmpFile.Name(),
		"-W", "160",
		"-H", "120",
		"-n", "30",
	)
	if err != nil {
		t.Fatalf("Synth command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	info, err := os.Stat(tmpFile.Name())
	if err != nil {
		t.Fatalf("Output file not found: %v", err)
	}
	if info.Size() < 1024 {
		t.Errorf("Output file too small: %d bytes", info.Size())
	}

	videoData, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if len(videoData) < 8 || string(videoData[4:8]) != "ftyp" {
		t.Error("Invalid MP4 file")
	}

	t.Logf("Video created: %d bytes", info.Size())
}

// TestSynthThenInfo round-trips an encoded file through the info command.
func TestSynthThenInfo(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	tmpFile, err := os.CreateTemp("", "framecast-e2e-info-*.mp4")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	if stdout, stderr, err := runCLI(t,
		"synth",
		"-o", tmpFile.Name(),
		"-W", "320",
		"-H", "240",
		"-n", "60",
	); err != nil {
		t.Fatalf("Synth command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	stdout, stderr, err := runCLI(t, "info", tmpFile.Name())
	if err != nil {
		t.Fatalf("Info command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	if !strings.Contains(stdout, "320x240") {
		t.Errorf("Info output missing resolution:\n%s", stdout)
	}
	if !strings.Contains(stdout, "60") {
		t.Errorf("Info output missing frame count:\n%s", stdout)
	}
}

// TestSynthThenDump decodes the encoded file back into thumbnails.
func TestSynthThenDump(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	tmpFile, err := os.CreateTemp("", "framecast-e2e-dump-*.mp4")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	if stdout, stderr, err := runCLI(t,
		"synth",
		"-o", tmpFile.Name(),
		"-W", "160",
		"-H", "120",
		"-n", "30",
	); err != nil {
		t.Fatalf("Synth command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	outDir, err := os.MkdirTemp("", "framecast-e2e-frames-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(outDir)

	// Dump frames 5..15 only
	stdout, stderr, err := runCLI(t,
		"dump",
		"-o", outDir,
		"--start", "5",
		"--end", "15",
		tmpFile.Name(),
	)
	if err != nil {
		t.Fatalf("Dump command failed: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("Expected 10 thumbnails, got %d", len(entries))
	}
}

// TestCodecsCommand lists decoders without touching any media.
func TestCodecsCommand(t *testing.T) {
	skipUnlessE2E(t)
	buildBinary(t)

	stdout, stderr, err := runCLI(t, "codecs", "--decoders")
	if err != nil {
		t.Fatalf("Codecs command failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "h264") {
		t.Errorf("Decoder list missing h264:\n%s", stdout)
	}
}

// getProjectRoot walks up from the working directory to the module root.
func getProjectRoot(t *testing.T) string {
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found")
		}
		dir = parent
	}
}
