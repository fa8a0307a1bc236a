package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"feebump/internal/deps"
	"feebump/internal/history"
	"feebump/internal/queue"
)

// CheckRelayBinary verifies the relay CLI resolves to an executable.
func CheckRelayBinary(binary string) Result {
	status := deps.Check(deps.RelayRequirement(binary))
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Path}
}

// CheckQueueFile verifies the queue file exists and parses.
func CheckQueueFile(path string) Result {
	const name = "Queue file"
	requests, err := queue.NewStore(path, nil).Load()
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && errors.Is(pathErr, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d requests, %d eligible)", path, len(requests), requests.Eligible())}
}

// CheckWritableDir verifies that the directory exists and can receive new files.
func CheckWritableDir(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
}

// CheckHistory verifies the history ledger opens with the expected schema.
func CheckHistory(path string) Result {
	const name = "History ledger"
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
