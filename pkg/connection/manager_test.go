package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/metrics"
)

// fakeSession counts bootstrap and close calls.
type fakeSession struct {
	indexCalls atomic.Int32
	closeCalls atomic.Int32
	indexErr   error
}

func (s *fakeSession) Insert(context.Context, string, domain.Document) error { return nil }
func (s *fakeSession) Get(context.Context, string) (domain.Document, error) {
	return nil, domain.ErrNotFound
}
func (s *fakeSession) ArrayAppend(context.Context, string, string, interface{}) error { return nil }
func (s *fakeSession) LookupArray(context.Context, string, string) ([]interface{}, error) {
	return nil, domain.ErrNotFound
}
func (s *fakeSession) Query(context.Context, domain.Statement) ([]domain.Document, error) {
	return nil, nil
}
func (s *fakeSession) EnsurePrimaryIndex(context.Context) error {
	s.indexCalls.Add(1)
	return s.indexErr
}
func (s *fakeSession) Close() error {
	s.closeCalls.Add(1)
	return nil
}

// fakeDialer fails the first `failures` dials, optionally blocking each dial
// until gate is closed.
type fakeDialer struct {
	dials    atomic.Int32
	failures int32
	gate     chan struct{}
	session  *fakeSession
}

func (d *fakeDialer) Dial(ctx context.Context) (domain.Session, error) {
	n := d.dials.Add(1)
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= d.failures {
		return nil, errors.New("connection refused")
	}
	return d.session, nil
}

func fastRetry() Option {
	return WithRetryPolicy(RetryPolicy{Delay: 5 * time.Millisecond})
}

func TestEnsureConnected_CachesSession(t *testing.T) {
	dialer := &fakeDialer{session: &fakeSession{}}
	m := NewManager(dialer, fastRetry())
	defer m.Close()

	first, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)
	second, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dialer.dials.Load())
	assert.Equal(t, int32(1), dialer.session.indexCalls.Load())
	assert.Equal(t, Connected, m.State())
}

func TestEnsureConnected_RetriesUntilSuccess(t *testing.T) {
	dialer := &fakeDialer{failures: 3, session: &fakeSession{}}
	mx := metrics.New()
	m := NewManager(dialer, fastRetry(), WithMetrics(mx))
	defer m.Close()

	session, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Same(t, dialer.session, session)
	assert.Equal(t, int32(4), dialer.dials.Load())
	assert.Equal(t, 3.0, testutil.ToFloat64(mx.ConnectAttempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mx.ConnectAttempts.WithLabelValues("success")))
	assert.Equal(t, float64(Connected), testutil.ToFloat64(mx.ConnectionState))
}

func TestEnsureConnected_ConcurrentCallersShareOneAttempt(t *testing.T) {
	gate := make(chan struct{})
	dialer := &fakeDialer{gate: gate, session: &fakeSession{}}
	m := NewManager(dialer, fastRetry())
	defer m.Close()

	const callers = 32
	var started sync.WaitGroup
	started.Add(callers)

	var g errgroup.Group
	sessions := make([]domain.Session, callers)
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			started.Done()
			s, err := m.EnsureConnected(context.Background())
			sessions[i] = s
			return err
		})
	}

	started.Wait()
	require.Eventually(t, func() bool { return m.State() == Connecting }, time.Second, time.Millisecond)
	close(gate)
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), dialer.dials.Load())
	assert.Equal(t, int32(1), dialer.session.indexCalls.Load())
	for _, s := range sessions {
		assert.Same(t, dialer.session, s)
	}
}

func TestEnsureConnected_BootstrapFailureStillConnects(t *testing.T) {
	dialer := &fakeDialer{session: &fakeSession{indexErr: errors.New("index service down")}}
	m := NewManager(dialer, fastRetry())
	defer m.Close()

	_, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Connected, m.State())
	assert.Equal(t, int32(1), dialer.session.indexCalls.Load())
}

func TestEnsureConnected_MaxAttempts(t *testing.T) {
	dialer := &fakeDialer{failures: 100, session: &fakeSession{}}
	m := NewManager(dialer, WithRetryPolicy(RetryPolicy{Delay: time.Millisecond, MaxAttempts: 3}))
	defer m.Close()

	_, err := m.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))
	assert.Equal(t, int32(3), dialer.dials.Load())
	assert.Equal(t, Disconnected, m.State())

	// A later call starts a fresh attempt loop.
	_, err = m.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(6), dialer.dials.Load())
}

func TestEnsureConnected_CallerContextEnds(t *testing.T) {
	dialer := &fakeDialer{failures: 2, session: &fakeSession{}}
	m := NewManager(dialer, WithRetryPolicy(RetryPolicy{Delay: 50 * time.Millisecond}))
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.EnsureConnected(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectionPending)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The attempt loop keeps running for later callers.
	session, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.Same(t, dialer.session, session)
	assert.Equal(t, int32(3), dialer.dials.Load())
}

func TestClose(t *testing.T) {
	dialer := &fakeDialer{session: &fakeSession{}}
	m := NewManager(dialer, fastRetry())

	_, err := m.EnsureConnected(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.Equal(t, int32(1), dialer.session.closeCalls.Load())
	assert.Equal(t, Disconnected, m.State())
	_, ok := m.Handle()
	assert.False(t, ok)
}

func TestClose_StopsRetryLoop(t *testing.T) {
	dialer := &fakeDialer{failures: 1000, session: &fakeSession{}}
	m := NewManager(dialer, WithRetryPolicy(RetryPolicy{Delay: time.Hour}))

	errCh := make(chan error, 1)
	go func() {
		_, err := m.EnsureConnected(context.Background())
		errCh <- err
	}()

	require.Eventually(t, func() bool { return dialer.dials.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, m.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("EnsureConnected did not return after Close")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "state(9)", State(9).String())
}
