package excel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gokundoluk/domain/core"
	"gokundoluk/internal"
	"gokundoluk/ports"
)

// owner files left next to a workbook by spreadsheet apps while it is open
var ownerFilePrefixes = []string{"~$", ".~lock."}

// FileLock guards an artifact path with a sidecar lock file and refuses paths
// that a spreadsheet application currently has open. A lock file whose owner
// process is gone, or that is older than Config.LockStaleAfter, is taken over.
type FileLock struct {
	suffix     string
	staleAfter time.Duration
	alive      func(pid int) bool
	logger     *internal.Logger
}

var _ ports.ArtifactLockPort = (*FileLock)(nil)

// NewFileLock creates a file lock
func NewFileLock(config Config, logger *internal.Logger) *FileLock {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	config = config.withDefaults()
	return &FileLock{
		suffix:     config.LockSuffix,
		staleAfter: config.LockStaleAfter,
		alive:      processAlive,
		logger:     logger,
	}
}

// Acquire takes the lock for path or fails with core.ErrLockedArtifact
func (l *FileLock) Acquire(path string) (func() error, error) {
	if owner, ok := openedBy(path); ok {
		l.logger.Warn("Workbook %s is open elsewhere (%s)", path, owner)
		return nil, core.NewLockedArtifactError(path)
	}

	lockPath := path + l.suffix
	err := createLockFile(lockPath)
	if errors.Is(err, fs.ErrExist) {
		reason, stale := l.stale(lockPath)
		if !stale {
			return nil, core.NewLockedArtifactError(path)
		}
		l.logger.Warn("Taking over stale lock %s: %s", lockPath, reason)
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lock %s: %w", lockPath, err)
		}
		err = createLockFile(lockPath)
		if errors.Is(err, fs.ErrExist) {
			return nil, core.NewLockedArtifactError(path)
		}
	}
	if err != nil {
		return nil, err
	}

	l.logger.Trace("Locked %s", path)
	return func() error {
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to release lock %s: %w", lockPath, err)
		}
		return nil
	}, nil
}

func createLockFile(lockPath string) error {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to create lock file %s: %w", lockPath, err)
	}
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		_ = os.Remove(lockPath)
		return fmt.Errorf("failed to write lock file %s: %w", lockPath, err)
	}
	return nil
}

// stale reports whether an existing lock file was abandoned. A lock whose
// pid cannot be read is held unless it has expired.
func (l *FileLock) stale(lockPath string) (string, bool) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return "", false
	}
	if age := time.Since(info.ModTime()); age > l.staleAfter {
		return fmt.Sprintf("%s old", age.Round(time.Second)), true
	}
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return "", false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return "", false
	}
	if !l.alive(pid) {
		return fmt.Sprintf("process %d is not running", pid), true
	}
	return "", false
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess only succeeds for live processes on windows
	if runtime.GOOS == "windows" {
		_ = p.Release()
		return true
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func openedBy(path string) (string, bool) {
	dir, name := filepath.Split(path)
	for _, prefix := range ownerFilePrefixes {
		owner := filepath.Join(dir, prefix+name)
		if prefix == ".~lock." {
			owner += "#"
		}
		if _, err := os.Stat(owner); err == nil {
			return owner, true
		}
	}
	return "", false
}
