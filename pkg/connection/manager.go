// Package connection owns the lifecycle of the backend session shared by
// every request.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/metrics"
)

// ErrClosed is returned to callers waiting on a manager that has been closed.
var ErrClosed = errors.New("connection manager closed")

// State is the position of the manager in its connection state machine.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RetryPolicy controls how failed connection attempts are retried. The delay
// is fixed; it does not grow between attempts.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts int // 0 retries forever
}

// DefaultRetryPolicy retries every five seconds, forever.
var DefaultRetryPolicy = RetryPolicy{Delay: 5 * time.Second}

// Option configures a Manager.
type Option func(*Manager)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(m *Manager) {
		if policy.Delay < 0 {
			policy.Delay = 0
		}
		if policy.MaxAttempts < 0 {
			policy.MaxAttempts = 0
		}
		m.policy = policy
	}
}

// WithLogger sets the logger used for connection events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records attempts and state transitions.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mx
	}
}

// Manager hands out the single backend session. The session is opened on
// first need, shared by all callers and replaced only by a new attempt after
// a failed open.
type Manager struct {
	dialer  domain.Dialer
	policy  RetryPolicy
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	state   State
	session domain.Session

	group     singleflight.Group
	bootstrap sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a disconnected manager for the given dialer.
func NewManager(dialer domain.Dialer, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		dialer: dialer,
		policy: DefaultRetryPolicy,
		logger: zap.NewNop(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetConnectionState(int(Disconnected))
	return m
}

// EnsureConnected returns the shared session, connecting first if needed.
// Concurrent callers share one attempt loop. Connection failures are retried
// inside the loop and are not returned; a caller whose ctx ends first gets
// ErrConnectionPending.
func (m *Manager) EnsureConnected(ctx context.Context) (domain.Session, error) {
	if session, ok := m.Handle(); ok {
		return session, nil
	}

	ch := m.group.DoChan("connect", func() (interface{}, error) {
		return m.connect()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.Session), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionPending, ctx.Err())
	}
}

// Handle returns the cached session without attempting to connect.
func (m *Manager) Handle() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.state == Connected
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Close stops any attempt loop and closes the session.
func (m *Manager) Close() error {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.session
	m.session = nil
	m.setStateLocked(Disconnected)
	if session == nil {
		return nil
	}
	return session.Close()
}

// connect runs the attempt loop. Only one instance runs at a time.
func (m *Manager) connect() (domain.Session, error) {
	if session, ok := m.Handle(); ok {
		return session, nil
	}
	m.setState(Connecting)

	for attempt := 1; ; attempt++ {
		session, err := m.dialer.Dial(m.ctx)
		m.metrics.ObserveConnectAttempt(err)

		if err == nil {
			m.runBootstrap(session)
			m.mu.Lock()
			if m.ctx.Err() != nil {
				m.mu.Unlock()
				_ = session.Close()
				return nil, ErrClosed
			}
			m.session = session
			m.setStateLocked(Connected)
			m.mu.Unlock()
			m.logger.Info("Backend connected", zap.Int("attempt", attempt))
			return session, nil
		}

		if m.ctx.Err() != nil {
			m.setState(Disconnected)
			return nil, ErrClosed
		}
		if m.policy.MaxAttempts > 0 && attempt >= m.policy.MaxAttempts {
			m.setState(Disconnected)
			m.logger.Error("Backend connection abandoned", zap.Int("attempts", attempt), zap.Error(err))
			return nil, domain.NewStoreError("connect", fmt.Errorf("giving up after %d attempts: %w", attempt, err))
		}

		m.logger.Warn("Backend connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", m.policy.Delay),
			zap.Error(err),
		)

		timer := time.NewTimer(m.policy.Delay)
		select {
		case <-timer.C:
		case <-m.ctx.Done():
			timer.Stop()
			m.setState(Disconnected)
			return nil, ErrClosed
		}
	}
}

// runBootstrap ensures the primary index exists. It runs once per manager,
// before the first session is published.
func (m *Manager) runBootstrap(session domain.Session) {
	m.bootstrap.Do(func() {
		if err := session.EnsurePrimaryIndex(m.ctx); err != nil {
			m.logger.Warn("Primary index bootstrap failed", zap.Error(err))
			return
		}
		m.logger.Info("Primary index ready")
	})
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStateLocked(state)
}

func (m *Manager) setStateLocked(state State) {
	m.state = state
	m.metrics.SetConnectionState(int(state))
}
