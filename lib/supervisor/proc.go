// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/seaoffreedom/neptune-core-wallet/lib/clock"
)

// managedProcess is one process handle owned by the supervisor: either
// a process we spawned this lifetime (owned) or one recovered from the
// state file on a fast-path restart (adopted). Owned processes are
// reaped by a background goroutine; adopted ones can only be probed.
type managedProcess struct {
	name    string
	pid     int
	adopted bool

	cmd      *exec.Cmd     // nil when adopted
	done     chan struct{} // closed once the owned process is reaped
	exitCode int

	logger *slog.Logger
}

// startProcess spawns binary in its own session, detached from the
// controlling terminal, and reaps it in the background so its exit is
// observed rather than leaving a zombie.
func startProcess(name, binary string, args []string, logger *slog.Logger) (*managedProcess, error) {
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", name, err)
	}

	proc := &managedProcess{
		name:   name,
		pid:    cmd.Process.Pid,
		cmd:    cmd,
		done:   make(chan struct{}),
		logger: logger,
	}

	go func() {
		waitError := cmd.Wait()
		exitCode := 0
		if waitError != nil {
			var exitErr *exec.ExitError
			if errors.As(waitError, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = -1
			}
		}
		proc.exitCode = exitCode
		close(proc.done)
		logger.Info("process exited",
			"name", name,
			"pid", proc.pid,
			"exit_code", exitCode,
		)
	}()

	logger.Info("process started", "name", name, "pid", proc.pid)
	return proc, nil
}

// adoptProcess wraps a PID recorded by a previous wallet lifetime.
// Fails if the PID no longer refers to a live process we may signal.
func adoptProcess(name string, pid int, logger *slog.Logger) (*managedProcess, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("adopting %s: invalid pid %d", name, pid)
	}
	if err := unix.Kill(pid, 0); err != nil {
		return nil, fmt.Errorf("adopting %s (pid %d): %w", name, pid, err)
	}
	logger.Info("process adopted", "name", name, "pid", pid)
	return &managedProcess{name: name, pid: pid, adopted: true, logger: logger}, nil
}

// alive reports whether the process is still running. Owned processes
// consult the reaper; adopted ones get a signal-0 probe.
func (p *managedProcess) alive() bool {
	if p == nil {
		return false
	}
	if p.adopted {
		return unix.Kill(p.pid, 0) == nil
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// doneChan returns the reaper channel for owned processes, or nil for
// adopted ones (a nil channel never fires in a select).
func (p *managedProcess) doneChan() <-chan struct{} {
	if p == nil || p.adopted {
		return nil
	}
	return p.done
}

// terminate sends SIGTERM, waits up to grace, and SIGKILLs anything
// still alive. Best effort throughout: signal errors mean the process
// already exited and are logged, not returned.
func (p *managedProcess) terminate(clk clock.Clock, grace time.Duration) {
	if p == nil || !p.alive() {
		return
	}

	if err := unix.Kill(p.pid, unix.SIGTERM); err != nil {
		p.logger.Debug("SIGTERM failed", "name", p.name, "pid", p.pid, "error", err)
		return
	}

	if p.adopted {
		// No reaper to wait on; poll the probe until grace elapses.
		deadline := clk.Now().Add(grace)
		for clk.Now().Before(deadline) {
			if unix.Kill(p.pid, 0) != nil {
				return
			}
			clk.Sleep(100 * time.Millisecond)
		}
		p.logger.Warn("grace period expired, killing", "name", p.name, "pid", p.pid)
		unix.Kill(p.pid, unix.SIGKILL)
		return
	}

	select {
	case <-p.done:
	case <-clk.After(grace):
		p.logger.Warn("grace period expired, killing", "name", p.name, "pid", p.pid)
		unix.Kill(p.pid, unix.SIGKILL)
		<-p.done
	}
}
