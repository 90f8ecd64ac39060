// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor owns the two external processes of the wallet: the
// node binary and the companion CLI running in RPC-server mode. It is
// the only component allowed to spawn, signal, or kill them.
//
// Lifecycle: Uninitialized → Initializing → Running → ShuttingDown →
// Uninitialized. Initialize compiles the node's argument vector, spawns
// the node, then concurrently spawns the companion server and polls the
// node for its readiness cookie; both must succeed before the
// supervisor is Running. A state file beside the node's data directory
// lets a restarted wallet recognize a still-running pair and adopt it
// instead of relaunching — after revalidating PIDs and binary digests,
// never on the file's word alone.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/seaoffreedom/neptune-core-wallet/lib/binhash"
	"github.com/seaoffreedom/neptune-core-wallet/lib/clock"
	"github.com/seaoffreedom/neptune-core-wallet/lib/nodeargs"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/walletrpc"
)

// State is the supervisor's lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateRunning
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrBusy rejects lifecycle operations while another is in flight.
	// Concurrent Initialize calls are rejected, never raced.
	ErrBusy = errors.New("supervisor: lifecycle operation already in progress")

	// ErrNodeNotReady means the readiness-poll attempt budget was
	// exhausted without the companion ever producing a cookie.
	ErrNodeNotReady = errors.New("supervisor: node never produced a readiness cookie")

	// ErrNodeExited means the node died while the wallet was still
	// waiting for it to become ready.
	ErrNodeExited = errors.New("supervisor: node exited during startup")
)

// Status is the synchronous, never-blocking view of the supervisor.
type Status struct {
	State            string `json:"state" cbor:"state"`
	Initialized      bool   `json:"initialized" cbor:"initialized"`
	NodeRunning      bool   `json:"node_running" cbor:"node_running"`
	NodePID          int    `json:"node_pid,omitempty" cbor:"node_pid,omitempty"`
	CompanionRunning bool   `json:"companion_running" cbor:"companion_running"`
	CompanionPID     int    `json:"companion_pid,omitempty" cbor:"companion_pid,omitempty"`
}

// SummaryClient is the slice of walletrpc.Client the refresh loop
// needs. Tests substitute a fake.
type SummaryClient interface {
	Summary(ctx context.Context) (*walletrpc.Summary, error)
	Close()
}

// Options configures a Supervisor. NodeBinary, CompanionBinary,
// Settings, Peers, and StateFile are required; everything else has a
// default.
type Options struct {
	NodeBinary      string
	CompanionBinary string

	Settings *settings.Store
	Peers    nodeargs.PeerLister

	// StateFile is the path of the restart cache, conventionally
	// supervisor-state.json beside the node's data directory.
	StateFile string

	Clock  clock.Clock
	Logger *slog.Logger
	Retry  RetryPolicy

	// RefreshInterval is the period of the wallet-summary refresh loop.
	RefreshInterval time.Duration

	// GraceTimeout is how long a SIGTERMed process gets before SIGKILL.
	GraceTimeout time.Duration

	// RestartCooldown is the pause between shutdown and re-initialize
	// during Restart.
	RestartCooldown time.Duration

	// Freshness is the maximum state-file age for the fast-path skip.
	Freshness time.Duration

	// NewSummaryClient builds the RPC client once the cookie is known.
	// Defaults to walletrpc.New.
	NewSummaryClient func(port int, cookie string) SummaryClient
}

// Supervisor manages the node and companion processes.
type Supervisor struct {
	opts   Options
	clock  clock.Clock
	logger *slog.Logger

	mu            sync.Mutex
	state         State
	node          *managedProcess
	companion     *managedProcess
	cookie        string
	cookieValid   bool
	client        SummaryClient
	refreshStop   chan struct{}
	refreshDone   chan struct{}
	lastSummary   *walletrpc.Summary
	lastSummaryAt time.Time
}

// New validates options, fills defaults, and returns an idle
// supervisor. Nothing is spawned until Initialize.
func New(opts Options) (*Supervisor, error) {
	if opts.NodeBinary == "" || opts.CompanionBinary == "" {
		return nil, errors.New("supervisor: node and companion binary paths are required")
	}
	if opts.Settings == nil {
		return nil, errors.New("supervisor: settings store is required")
	}
	if opts.Peers == nil {
		return nil, errors.New("supervisor: peer lister is required")
	}
	if opts.StateFile == "" {
		return nil, errors.New("supervisor: state file path is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = 10 * time.Second
	}
	if opts.GraceTimeout == 0 {
		opts.GraceTimeout = 5 * time.Second
	}
	if opts.RestartCooldown == 0 {
		opts.RestartCooldown = time.Second
	}
	if opts.Freshness == 0 {
		opts.Freshness = 2 * time.Minute
	}
	if opts.NewSummaryClient == nil {
		logger := opts.Logger
		opts.NewSummaryClient = func(port int, cookie string) SummaryClient {
			return walletrpc.New(port, cookie, logger)
		}
	}

	return &Supervisor{
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger,
	}, nil
}

// Initialize brings both processes up. Calling it while Running with
// both processes alive is a no-op; calling it while another lifecycle
// operation is in flight returns ErrBusy. Any failure triggers a full
// implicit shutdown before the error is returned, so a retry always
// starts from a clean slate.
func (s *Supervisor) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateInitializing, StateShuttingDown:
		s.mu.Unlock()
		return ErrBusy
	case StateRunning:
		if s.node.alive() && s.companion.alive() {
			s.mu.Unlock()
			return nil
		}
		// A process died underneath us; rebuild from scratch.
	}
	s.state = StateInitializing
	s.mu.Unlock()

	if err := s.initialize(ctx); err != nil {
		s.teardown()
		s.setState(StateUninitialized)
		return err
	}

	s.setState(StateRunning)
	return nil
}

type cookieResult struct {
	cookie string
	err    error
}

func (s *Supervisor) initialize(ctx context.Context) error {
	// Clear any remnants of a half-dead Running state first.
	s.teardown()

	config := s.opts.Settings.Current()

	if s.tryFastPath(ctx, config) {
		return nil
	}

	if err := validateBinary(s.opts.NodeBinary); err != nil {
		return err
	}
	if err := validateBinary(s.opts.CompanionBinary); err != nil {
		return err
	}

	args, err := nodeargs.Compile(ctx, config, settings.Defaults(), s.opts.Peers, s.logger)
	if err != nil {
		return err
	}

	node, err := startProcess("node", s.opts.NodeBinary, args, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.node = node
	s.mu.Unlock()

	// Companion spawn and readiness poll run concurrently; startup
	// succeeds only when both have completed. Both branches are always
	// drained, even on failure, so teardown sees every handle that was
	// created.
	companionCh := make(chan error, 1)
	cookieCh := make(chan cookieResult, 1)

	go func() {
		companion, err := startProcess("companion", s.opts.CompanionBinary,
			s.companionServerArgs(config), s.logger)
		if err != nil {
			companionCh <- err
			return
		}
		s.mu.Lock()
		s.companion = companion
		s.mu.Unlock()
		companionCh <- nil
	}()

	go func() {
		cookie, err := s.pollCookie(ctx, config, node.doneChan())
		cookieCh <- cookieResult{cookie: cookie, err: err}
	}()

	companionErr := <-companionCh
	poll := <-cookieCh
	if companionErr != nil {
		return companionErr
	}
	if poll.err != nil {
		return poll.err
	}

	s.becomeRunning(config, poll.cookie)
	return s.persistState(config)
}

// tryFastPath consults the state file: if it is fresh, claims
// initialized, the binaries on disk still match its digests, and both
// recorded PIDs are alive, the pair is adopted and only the cookie is
// re-fetched. Any mismatch falls back to a cold start.
func (s *Supervisor) tryFastPath(ctx context.Context, config *settings.Config) bool {
	cached, err := loadState(s.opts.StateFile)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("state file unreadable, cold start", "error", err)
		}
		return false
	}
	if !cached.Initialized {
		return false
	}
	if age := s.clock.Now().Sub(cached.Timestamp); age < 0 || age > s.opts.Freshness {
		s.logger.Debug("state file stale, cold start", "age", s.clock.Now().Sub(cached.Timestamp))
		return false
	}
	if !s.digestsMatch(cached) {
		s.logger.Info("binaries changed since last launch, cold start")
		return false
	}

	node, err := adoptProcess("node", cached.NodePID, s.logger)
	if err != nil {
		s.logger.Debug("cached node not adoptable, cold start", "error", err)
		return false
	}
	companion, err := adoptProcess("companion", cached.CompanionPID, s.logger)
	if err != nil {
		s.logger.Debug("cached companion not adoptable, cold start", "error", err)
		return false
	}

	// The cookie lives only in memory, so even an adopted pair needs a
	// fresh fetch. A running node answers on the first attempt.
	cookie, err := s.pollCookie(ctx, config, nil)
	if err != nil {
		s.logger.Warn("adopted node did not yield a cookie, cold start", "error", err)
		return false
	}

	s.mu.Lock()
	s.node = node
	s.companion = companion
	s.mu.Unlock()

	s.becomeRunning(config, cookie)
	if err := s.persistState(config); err != nil {
		s.logger.Warn("persisting state after adoption", "error", err)
	}
	s.logger.Info("adopted running processes from previous lifetime",
		"node_pid", node.pid, "companion_pid", companion.pid)
	return true
}

func (s *Supervisor) digestsMatch(cached *cachedState) bool {
	nodeDigest, err := binhash.HashFile(s.opts.NodeBinary)
	if err != nil {
		return false
	}
	companionDigest, err := binhash.HashFile(s.opts.CompanionBinary)
	if err != nil {
		return false
	}
	return binhash.FormatDigest(nodeDigest) == cached.NodeDigest &&
		binhash.FormatDigest(companionDigest) == cached.CompanionDigest
}

// companionServerArgs builds the long-running RPC-server invocation:
// the node's RPC port, the companion's own listen port, and the flag
// selecting server mode.
func (s *Supervisor) companionServerArgs(config *settings.Config) []string {
	return []string{
		strconv.Itoa(config.Network.RPCPort),
		"--listen-port", strconv.Itoa(config.Network.CompanionPort),
		"--rpc-server",
	}
}

// pollCookie invokes the companion one-shot until its stdout contains a
// cookie, the retry budget runs out, the node dies, or ctx is
// cancelled. An attempt without a cookie is "not ready yet", not an
// error.
func (s *Supervisor) pollCookie(ctx context.Context, config *settings.Config, nodeDone <-chan struct{}) (string, error) {
	port := strconv.Itoa(config.Network.RPCPort)

	for attempt := 0; attempt < s.opts.Retry.MaxAttempts; attempt++ {
		if delay := s.opts.Retry.delay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-nodeDone:
				return "", ErrNodeExited
			case <-s.clock.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Retry.AttemptTimeout)
		output, err := exec.CommandContext(attemptCtx, s.opts.CompanionBinary, port, "--get-cookie").Output()
		cancel()
		if err != nil {
			s.logger.Debug("cookie attempt failed", "attempt", attempt, "error", err)
			continue
		}
		if cookie, ok := extractCookie(string(output)); ok {
			s.logger.Info("node ready", "attempts", attempt+1)
			return cookie, nil
		}
		s.logger.Debug("no cookie in companion output yet", "attempt", attempt)
	}
	return "", ErrNodeNotReady
}

// becomeRunning records the cookie, builds the RPC client, and starts
// the refresh loop.
func (s *Supervisor) becomeRunning(config *settings.Config, cookie string) {
	client := s.opts.NewSummaryClient(config.Network.CompanionPort, cookie)
	stop := make(chan struct{})
	done := make(chan struct{})

	s.mu.Lock()
	s.cookie = cookie
	s.cookieValid = true
	s.client = client
	s.refreshStop = stop
	s.refreshDone = done
	s.mu.Unlock()

	go s.refreshLoop(client, stop, done)
}

// refreshLoop fetches the wallet summary on a fixed interval. Each tick
// swallows its own failure; only Shutdown stops the loop.
func (s *Supervisor) refreshLoop(client SummaryClient, stop, done chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.RefreshInterval)
			summary, err := client.Summary(ctx)
			cancel()
			if err != nil {
				s.logger.Warn("wallet summary refresh failed", "error", err)
				continue
			}
			s.mu.Lock()
			s.lastSummary = summary
			s.lastSummaryAt = s.clock.Now()
			s.mu.Unlock()
		}
	}
}

func (s *Supervisor) persistState(config *settings.Config) error {
	nodeDigest, err := binhash.HashFile(s.opts.NodeBinary)
	if err != nil {
		return err
	}
	companionDigest, err := binhash.HashFile(s.opts.CompanionBinary)
	if err != nil {
		return err
	}

	s.mu.Lock()
	state := &cachedState{
		Timestamp:       s.clock.Now(),
		Initialized:     true,
		Config:          config.Clone(),
		NodePID:         s.node.pid,
		CompanionPID:    s.companion.pid,
		NodeDigest:      binhash.FormatDigest(nodeDigest),
		CompanionDigest: binhash.FormatDigest(companionDigest),
	}
	s.mu.Unlock()

	return saveState(s.opts.StateFile, state)
}

// Shutdown stops the refresh loop, disconnects the RPC client, then
// terminates the companion and the node, in that order, with SIGTERM
// escalating to SIGKILL after the grace period. Safe to call when
// nothing is running; best effort throughout.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateInitializing || s.state == StateShuttingDown {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateShuttingDown
	s.mu.Unlock()

	s.teardown()
	s.setState(StateUninitialized)
	return nil
}

// teardown is the shared cleanup path for Shutdown and failed
// Initialize. Ordering: refresh loop, RPC client, companion, node.
func (s *Supervisor) teardown() {
	s.mu.Lock()
	stop, done := s.refreshStop, s.refreshDone
	client := s.client
	node, companion := s.node, s.companion
	s.refreshStop, s.refreshDone = nil, nil
	s.client = nil
	s.node, s.companion = nil, nil
	s.cookieValid = false
	s.lastSummary = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if client != nil {
		client.Close()
	}
	companion.terminate(s.clock, s.opts.GraceTimeout)
	node.terminate(s.clock, s.opts.GraceTimeout)
}

// Restart is shutdown, a fixed cooldown, then a full initialize. It
// never special-cases partial failure; the sequence is always the same.
func (s *Supervisor) Restart(ctx context.Context) error {
	if err := s.Shutdown(ctx); err != nil {
		return err
	}
	s.clock.Sleep(s.opts.RestartCooldown)
	return s.Initialize(ctx)
}

// Status reports process liveness and the lifecycle phase. It never
// blocks and never fails; on inconsistency it degrades to "not
// running".
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		State:       s.state.String(),
		Initialized: s.state == StateRunning,
	}
	if s.node != nil {
		status.NodeRunning = s.node.alive()
		status.NodePID = s.node.pid
	}
	if s.companion != nil {
		status.CompanionRunning = s.companion.alive()
		status.CompanionPID = s.companion.pid
	}
	return status
}

// Cookie returns the in-memory readiness cookie. The second return is
// false until startup completes and again after shutdown. Never blocks,
// never fetches.
func (s *Supervisor) Cookie() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cookieValid {
		return "", false
	}
	return s.cookie, true
}

// LastSummary returns the most recent wallet summary and when it was
// fetched. ok is false before the first successful refresh.
func (s *Supervisor) LastSummary() (summary *walletrpc.Summary, fetchedAt time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSummary == nil {
		return nil, time.Time{}, false
	}
	return s.lastSummary, s.lastSummaryAt, true
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// validateBinary fails fast on a missing or non-executable binary: an
// installation defect, not a transient condition.
func validateBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("binary %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("binary %s is not a regular file", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("binary %s is not executable", path)
	}
	return nil
}
