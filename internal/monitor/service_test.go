package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/limiter"
	"github.com/batemapf/site-differ/internal/models"
	"github.com/batemapf/site-differ/internal/normalizer"
)

type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]models.URLState
	puts   int
	getErr error
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{states: make(map[string]models.URLState)}
}

func (m *memoryStateStore) Get(_ context.Context, url string) (models.URLState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return models.URLState{}, false, m.getErr
	}
	state, found := m.states[url]
	if !found {
		return models.URLState{URL: url}, false, nil
	}
	return state, true, nil
}

func (m *memoryStateStore) Put(_ context.Context, state models.URLState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.states[state.URL] = state
	return nil
}

func (m *memoryStateStore) Close() error { return nil }

type capturingNotifier struct {
	mu      sync.Mutex
	digests []models.Digest
	err     error
}

func (n *capturingNotifier) Notify(_ context.Context, digest models.Digest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, digest)
	return n.err
}

func (n *capturingNotifier) delivered() []models.Digest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Digest(nil), n.digests...)
}

func newMutableServer(t *testing.T, initial string) (*httptest.Server, func(string)) {
	t.Helper()
	var mu sync.Mutex
	body := initial
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	setBody := func(next string) {
		mu.Lock()
		defer mu.Unlock()
		body = next
	}
	return server, setBody
}

func serviceConfig(urls ...string) *config.GlobalConfig {
	cfg := config.NewDefaultGlobalConfig()
	cfg.CheckConfig.CooldownMinutes = 0
	for _, u := range urls {
		cfg.URLs = append(cfg.URLs, config.URLConfig{URL: u})
	}
	return cfg
}

func newTestService(t *testing.T, cfg *config.GlobalConfig, store models.StateStore, digestNotifier models.Notifier) *CheckService {
	t.Helper()
	logger := zerolog.Nop()
	guard := limiter.NewResourceGuard(config.ResourceLimiterConfig{Enabled: false}, logger)
	return NewCheckService(cfg, newTestChecker(t, cfg.CheckConfig), store, digestNotifier, guard, logger)
}

func TestCheckService_Run_FirstRunEstablishesBaselines(t *testing.T) {
	serverA, _ := newMutableServer(t, "<p>alpha</p>")
	serverB, _ := newMutableServer(t, "<p>beta</p>")

	store := newMemoryStateStore()
	digestNotifier := &capturingNotifier{}
	service := newTestService(t, serviceConfig(serverA.URL, serverB.URL), store, digestNotifier)

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, digest.Summary.Checked)
	assert.Equal(t, 2, digest.Summary.Baselined)
	assert.Zero(t, digest.Summary.Changed)
	assert.True(t, digest.IsEmpty())
	assert.Empty(t, digestNotifier.delivered())

	assert.Equal(t, 2, store.puts)
	stateA, found, err := store.Get(context.Background(), serverA.URL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, normalizer.Fingerprint("alpha"), stateA.LastFingerprint)
}

func TestCheckService_Run_SecondRunReportsChange(t *testing.T) {
	serverA, setA := newMutableServer(t, "<p>alpha</p>")
	serverB, _ := newMutableServer(t, "<p>beta</p>")

	store := newMemoryStateStore()
	digestNotifier := &capturingNotifier{}
	service := newTestService(t, serviceConfig(serverA.URL, serverB.URL), store, digestNotifier)

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	setA("<p>alpha updated</p>")

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, digest.Summary.Checked)
	assert.Equal(t, 1, digest.Summary.Changed)
	assert.Equal(t, 1, digest.Summary.Unchanged)
	require.Len(t, digest.Changes, 1)
	assert.Equal(t, serverA.URL, digest.Changes[0].URL)
	assert.Equal(t, "-alpha\n+alpha updated", digest.Changes[0].Diff.Text)
	assert.Equal(t, normalizer.Fingerprint("alpha"), digest.Changes[0].PreviousFingerprint)
	assert.Equal(t, normalizer.Fingerprint("alpha updated"), digest.Changes[0].NewFingerprint)

	deliveries := digestNotifier.delivered()
	require.Len(t, deliveries, 1)
	assert.Equal(t, digest.Changes, deliveries[0].Changes)
}

func TestCheckService_Run_ChangesFollowConfigOrder(t *testing.T) {
	serverA, setA := newMutableServer(t, "<p>one</p>")
	serverB, setB := newMutableServer(t, "<p>two</p>")
	serverC, setC := newMutableServer(t, "<p>three</p>")

	store := newMemoryStateStore()
	service := newTestService(t, serviceConfig(serverA.URL, serverB.URL, serverC.URL), store, &capturingNotifier{})

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	setA("<p>one more</p>")
	setB("<p>two more</p>")
	setC("<p>three more</p>")

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, digest.Changes, 3)
	assert.Equal(t, serverA.URL, digest.Changes[0].URL)
	assert.Equal(t, serverB.URL, digest.Changes[1].URL)
	assert.Equal(t, serverC.URL, digest.Changes[2].URL)
}

func TestCheckService_Run_FailureDoesNotBlockOtherURLs(t *testing.T) {
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	t.Cleanup(badServer.Close)
	okServer, _ := newMutableServer(t, "<p>fine</p>")

	store := newMemoryStateStore()
	digestNotifier := &capturingNotifier{}
	service := newTestService(t, serviceConfig(badServer.URL, okServer.URL), store, digestNotifier)

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, digest.Summary.Checked)
	assert.Equal(t, 1, digest.Summary.Failed)
	assert.Equal(t, 1, digest.Summary.Baselined)

	badState, found, err := store.Get(context.Background(), badServer.URL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, badState.ConsecutiveFailures)
	assert.Contains(t, badState.LastError, "status 500")

	okState, _, err := store.Get(context.Background(), okServer.URL)
	require.NoError(t, err)
	assert.Equal(t, normalizer.Fingerprint("fine"), okState.LastFingerprint)
}

func TestCheckService_Run_PersistentFailuresInDigest(t *testing.T) {
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	t.Cleanup(badServer.Close)

	cfg := serviceConfig(badServer.URL)
	cfg.CheckConfig.FailureThreshold = 1
	cfg.NotificationConfig.NotifyOnFailure = true

	digestNotifier := &capturingNotifier{}
	service := newTestService(t, cfg, newMemoryStateStore(), digestNotifier)

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, digest.Failures, 1)
	assert.Equal(t, badServer.URL, digest.Failures[0].URL)
	assert.Equal(t, 1, digest.Failures[0].ConsecutiveFailures)
	assert.Contains(t, digest.Failures[0].LastError, "status 502")
	assert.False(t, digest.IsEmpty())
	assert.Len(t, digestNotifier.delivered(), 1)
}

func TestCheckService_Run_FailureNoticesRespectOptOut(t *testing.T) {
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	t.Cleanup(badServer.Close)

	cfg := serviceConfig(badServer.URL)
	cfg.CheckConfig.FailureThreshold = 1
	cfg.NotificationConfig.NotifyOnFailure = false

	digestNotifier := &capturingNotifier{}
	service := newTestService(t, cfg, newMemoryStateStore(), digestNotifier)

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, digest.Failures)
	assert.True(t, digest.IsEmpty())
	assert.Empty(t, digestNotifier.delivered())
}

func TestCheckService_Run_CooldownSuppressesRepeatNotifications(t *testing.T) {
	server, setBody := newMutableServer(t, "<p>first</p>")

	cfg := serviceConfig(server.URL)
	cfg.CheckConfig.CooldownMinutes = 60

	store := newMemoryStateStore()
	digestNotifier := &capturingNotifier{}
	service := newTestService(t, cfg, store, digestNotifier)

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	setBody("<p>second</p>")
	digest, err := service.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, digest.Changes, 1)

	setBody("<p>third</p>")
	digest, err = service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, digest.Summary.Changed)
	assert.Empty(t, digest.Changes)
	assert.Len(t, digestNotifier.delivered(), 1)

	// The suppressed change still moved the baseline forward.
	state, _, err := store.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, normalizer.Fingerprint("third"), state.LastFingerprint)
}

func TestCheckService_Run_ResourceGuardRefusal(t *testing.T) {
	server, _ := newMutableServer(t, "<p>content</p>")

	cfg := serviceConfig(server.URL)
	digestNotifier := &capturingNotifier{}
	guard := limiter.NewResourceGuard(config.ResourceLimiterConfig{Enabled: true, MaxGoroutines: 1}, zerolog.Nop())
	service := NewCheckService(cfg, newTestChecker(t, cfg.CheckConfig), newMemoryStateStore(), digestNotifier, guard, zerolog.Nop())

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource guard refused the run")
	assert.Empty(t, digestNotifier.delivered())
}

func TestCheckService_Run_NotifierFailureDoesNotFailRun(t *testing.T) {
	server, setBody := newMutableServer(t, "<p>original</p>")

	store := newMemoryStateStore()
	digestNotifier := &capturingNotifier{err: errors.New("webhook unreachable")}
	service := newTestService(t, serviceConfig(server.URL), store, digestNotifier)

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	setBody("<p>updated</p>")
	digest, err := service.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, digest.Changes, 1)
	assert.Len(t, digestNotifier.delivered(), 1)
}

func TestCheckService_Run_StateLoadFailureAborts(t *testing.T) {
	server, _ := newMutableServer(t, "<p>content</p>")

	store := newMemoryStateStore()
	store.getErr = errors.New("disk corrupted")
	service := newTestService(t, serviceConfig(server.URL), store, &capturingNotifier{})

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load state for")
}

func TestCheckService_Run_BadIgnorePatternAborts(t *testing.T) {
	server, _ := newMutableServer(t, "<p>content</p>")

	cfg := serviceConfig(server.URL)
	cfg.URLs[0].IgnorePatterns = []string{"("}

	service := newTestService(t, cfg, newMemoryStateStore(), &capturingNotifier{})

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile ignore patterns")
}

func TestCheckService_Run_NoURLsConfigured(t *testing.T) {
	digestNotifier := &capturingNotifier{}
	service := newTestService(t, serviceConfig(), newMemoryStateStore(), digestNotifier)

	digest, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, digest.Summary.Checked)
	assert.True(t, digest.IsEmpty())
	assert.False(t, digest.GeneratedAt.IsZero())
	assert.Empty(t, digestNotifier.delivered())
}
