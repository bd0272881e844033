package testutil

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// AssertExists fails the test if nothing exists at path (links are not followed).
func AssertExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err != nil {
		t.Errorf("expected path to exist: %s (%v)", path, err)
	}
}

// AssertNotExists fails the test if anything exists at path.
func AssertNotExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("expected path to not exist: %s", path)
	}
}

// AssertSymlinkTo fails the test unless path is a symlink to target.
func AssertSymlinkTo(t testing.TB, path, target string) {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Errorf("expected symlink at %s: %v", path, err)
		return
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("expected %s to be a symlink, got mode %v", path, info.Mode())
		return
	}
	got, err := os.Readlink(path)
	if err != nil {
		t.Errorf("readlink %s: %v", path, err)
		return
	}
	if got != target {
		t.Errorf("symlink %s points to %s, want %s", path, got, target)
	}
}

// ReadFile returns the content at path, failing the test on error.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// AssertFileContains fails the test if the file does not contain substr.
func AssertFileContains(t testing.TB, path, substr string) {
	t.Helper()
	content := ReadFile(t, path)
	if !strings.Contains(content, substr) {
		t.Errorf("expected file %s to contain %q, got:\n%s", path, substr, content)
	}
}

// ReadJSON decodes the JSON object stored at path.
func ReadJSON(t testing.TB, path string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(ReadFile(t, path)), &out); err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return out
}
