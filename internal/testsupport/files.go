package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TxID returns a deterministic 64 character hex transaction id.
func TxID(n int) string {
	return fmt.Sprintf("%064x", n)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test when unreadable.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// LogLines returns the non-empty lines of an audit log, or nil when it does
// not exist.
func LogLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// QueueRequest renders one queue entry. Empty txid or a nil feeDelta omit the
// corresponding field.
func QueueRequest(txid string, feeDelta *int64, eventType string) string {
	fields := []string{}
	if txid != "" {
		fields = append(fields, fmt.Sprintf(`"txid": %q`, txid))
	}
	if feeDelta != nil {
		fields = append(fields, fmt.Sprintf(`"feeDelta": %d`, *feeDelta))
	}
	fields = append(fields,
		fmt.Sprintf(`"eventType": %q`, eventType),
		`"pools": [111]`,
		`"effectiveVsize": 141`,
		`"effectiveFee": 2820`,
		`"loggedAt": "2024-05-01T12:00:00Z"`,
	)
	return "{" + strings.Join(fields, ", ") + "}"
}

// QueueDocument wraps rendered requests in the queue envelope.
func QueueDocument(requests ...string) string {
	return `{"accelerations": [` + strings.Join(requests, ", ") + "]}\n"
}

// Fee returns a pointer to delta.
func Fee(delta int64) *int64 {
	return &delta
}
