package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"gokundoluk/ports"
)

// startTimeout bounds how long the platform opener may take to hand off
const startTimeout = 10 * time.Second

// System opens files with the operating system's default application
type System struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

var _ ports.LauncherPort = (*System)(nil)

// NewSystem creates a launcher for the current platform
func NewSystem() *System {
	return &System{goos: runtime.GOOS, run: runCommand}
}

// Open hands path to the default handler and returns once the opener exits
func (s *System) Open(path string) error {
	name, args, err := command(s.goos, path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := s.run(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, name, err)
	}
	return nil
}

func command(goos, path string) (string, []string, error) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "darwin":
		return "open", []string{path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("opening files is not supported on %s", goos)
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Nop never opens anything
type Nop struct{}

// Open does nothing
func (Nop) Open(string) error { return nil }
