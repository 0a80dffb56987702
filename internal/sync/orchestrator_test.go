package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/ruminaider/mcp-roster/internal/credentials"
	"github.com/ruminaider/mcp-roster/internal/notify"
	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	result remote.Result
	calls  int
	tokens []string
}

func (f *fakeFetcher) FetchCandidates(_ context.Context, token string) remote.Result {
	f.calls++
	f.tokens = append(f.tokens, token)
	return f.result
}

type countingStore struct {
	credentials.Store
	sets int
	err  error
}

func (s *countingStore) Set(token string) error {
	s.sets++
	if s.err != nil {
		return s.err
	}
	return s.Store.Set(token)
}

type harness struct {
	orch    *Orchestrator
	fetcher *fakeFetcher
	store   *countingStore
	manager *servers.Manager
	board   *notify.Board
}

func newHarness(t *testing.T, token string, existing []servers.Entry, result remote.Result) *harness {
	t.Helper()
	store := &countingStore{Store: credentials.NewMemoryStore()}
	if token != "" {
		require.NoError(t, store.Store.Set(token))
	}
	m, err := servers.NewManager(existing)
	require.NoError(t, err)
	f := &fakeFetcher{result: result}
	b := notify.NewBoard()
	return &harness{
		orch:    New(store, f, m, b, nil),
		fetcher: f,
		store:   store,
		manager: m,
		board:   b,
	}
}

// flakyCollection fails every Add after the first ok calls.
type flakyCollection struct {
	*servers.Manager
	ok int
}

func (c *flakyCollection) Add(e servers.Entry) (servers.Entry, error) {
	if c.ok == 0 {
		return servers.Entry{}, errors.New("disk full")
	}
	c.ok--
	return c.Manager.Add(e)
}

func candidates(names ...string) []remote.Candidate {
	out := make([]remote.Candidate, len(names))
	for i, n := range names {
		out[i] = remote.Candidate{Name: n, Command: "run-" + n}
	}
	return out
}

func lastNotice(t *testing.T, b *notify.Board) notify.Notice {
	t.Helper()
	n, ok := b.Get(NotificationKey)
	require.True(t, ok, "expected a sync notice")
	return n
}

func TestRequest_AddsAllToEmptyCollectionAndSelectsFirst(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A", "B")})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusAdded, rep.Status)
	require.Len(t, rep.Added, 2)
	assert.Equal(t, "A", rep.Added[0].Name)
	assert.Equal(t, "B", rep.Added[1].Name)
	assert.Equal(t, 2, h.manager.Len())

	sel, ok := h.manager.Selected()
	require.True(t, ok)
	assert.Equal(t, "A", sel.Name)
	assert.Equal(t, rep.Added[0].ID, sel.ID)

	n := lastNotice(t, h.board)
	assert.Equal(t, notify.LevelSuccess, n.Level)
	assert.Equal(t, "Added 2 new servers", n.Message)

	assert.Equal(t, StateIdle, h.orch.State())
	assert.False(t, h.orch.InProgress())
	assert.Equal(t, []string{"tok"}, h.fetcher.tokens)
}

func TestRequest_SkipsExistingEquivalent(t *testing.T) {
	existing := []servers.Entry{{ID: "local-a", Name: "A", Command: "run-A"}}
	h := newHarness(t, "tok", existing, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A", "B")})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, "B", rep.Added[0].Name)

	got := h.manager.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "local-a", got[0].ID, "existing entry keeps its id and position")
	assert.Equal(t, "B", got[1].Name)
}

func TestRequest_NothingNewIsInformational(t *testing.T) {
	existing := []servers.Entry{{ID: "a", Name: "A", Command: "run-A"}}
	h := newHarness(t, "tok", existing, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNothingNew, rep.Status)
	assert.Empty(t, rep.Added)

	n := lastNotice(t, h.board)
	assert.Equal(t, notify.LevelInfo, n.Level)
	assert.Equal(t, "No new servers to add", n.Message)

	_, ok := h.manager.Selected()
	assert.False(t, ok, "nothing added, nothing selected")
}

func TestRequest_NoTokenNeverFetches(t *testing.T) {
	h := newHarness(t, "", nil, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsToken, rep.Status)
	assert.Equal(t, StatePromptingForToken, h.orch.State())
	assert.Zero(t, h.fetcher.calls)
	assert.False(t, h.orch.InProgress())
}

func TestSubmit_BlankTokenIsNoop(t *testing.T) {
	h := newHarness(t, "", nil, remote.Result{Kind: remote.KindSuccess})
	_, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	for _, raw := range []string{"", "   ", "\t\n"} {
		rep, err := h.orch.Submit(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, StatusNeedsToken, rep.Status)
	}

	assert.Zero(t, h.store.sets, "no persistence call")
	assert.Zero(t, h.fetcher.calls, "no sync attempt")
	assert.Equal(t, StatePromptingForToken, h.orch.State(), "prompt stays open")
}

func TestSubmit_StoresTrimmedTokenAndSyncsImmediately(t *testing.T) {
	h := newHarness(t, "", nil, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")})
	_, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	rep, err := h.orch.Submit(context.Background(), "  secret-token \n")
	require.NoError(t, err)
	assert.Equal(t, StatusAdded, rep.Status)

	tok, ok, err := h.store.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret-token", tok)
	assert.Equal(t, []string{"secret-token"}, h.fetcher.tokens)
	assert.Equal(t, StateIdle, h.orch.State())
}

func TestSubmit_OutsidePrompt(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{})
	_, err := h.orch.Submit(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotPrompting)
	assert.Zero(t, h.store.sets)
}

func TestSubmit_StoreFailureKeepsPrompt(t *testing.T) {
	h := newHarness(t, "", nil, remote.Result{})
	h.store.err = errors.New("disk full")
	_, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	_, err = h.orch.Submit(context.Background(), "tok")
	assert.Error(t, err)
	assert.Equal(t, StatePromptingForToken, h.orch.State())
	assert.Zero(t, h.fetcher.calls)
}

func TestCancelPrompt(t *testing.T) {
	h := newHarness(t, "", nil, remote.Result{})
	_, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	h.orch.CancelPrompt()
	assert.Equal(t, StateIdle, h.orch.State())
	assert.Zero(t, h.store.sets)
	_, ok := h.board.Get(NotificationKey)
	assert.False(t, ok, "cancel posts nothing")
}

func TestRequest_UnauthorizedReopensPromptAndKeepsState(t *testing.T) {
	existing := []servers.Entry{{ID: "a", Name: "A", Command: "x"}}
	h := newHarness(t, "stale", existing, remote.Result{Kind: remote.KindUnauthorized, Err: remote.ErrUnauthorized})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnauthorized, rep.Status)
	assert.ErrorIs(t, rep.Err, remote.ErrUnauthorized)

	assert.Equal(t, StatePromptingForToken, h.orch.State(), "prompt re-opens")
	assert.Equal(t, existing, h.manager.Entries(), "collection unchanged")
	assert.False(t, h.orch.InProgress())

	n := lastNotice(t, h.board)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Equal(t, UnauthorizedMessage, n.Message)

	tok, ok, _ := h.store.Get()
	assert.True(t, ok)
	assert.Equal(t, "stale", tok, "stored token is not cleared")
	assert.Zero(t, h.store.sets)
}

func TestRequest_UnauthorizedThenNewTokenSucceeds(t *testing.T) {
	h := newHarness(t, "stale", nil, remote.Result{Kind: remote.KindUnauthorized, Err: remote.ErrUnauthorized})
	_, err := h.orch.Request(context.Background())
	require.NoError(t, err)

	h.fetcher.result = remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")}
	rep, err := h.orch.Submit(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusAdded, rep.Status)
	assert.Equal(t, []string{"stale", "fresh"}, h.fetcher.tokens)
}

func TestRequest_TransientFailure(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{Kind: remote.KindFailure, Err: errors.New("connection refused")})

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err, "remote failures become notices, not errors")
	assert.Equal(t, StatusFailed, rep.Status)
	assert.Equal(t, StateIdle, h.orch.State())
	assert.Zero(t, h.manager.Len())
	assert.Equal(t, 1, h.fetcher.calls, "no automatic retry")

	n := lastNotice(t, h.board)
	assert.Equal(t, notify.LevelError, n.Level)
	assert.Contains(t, n.Message, "connection refused")
}

func TestBegin_GuardsOverlappingSyncs(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")})

	first, err := h.orch.Begin()
	require.NoError(t, err)
	require.Equal(t, StepFetch, first.Step)
	assert.True(t, h.orch.InProgress())

	n := lastNotice(t, h.board)
	assert.Equal(t, notify.LevelLoading, n.Level)

	second, err := h.orch.Begin()
	require.NoError(t, err)
	assert.Equal(t, StepBusy, second.Step)

	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusBusy, rep.Status)
	assert.Zero(t, h.fetcher.calls)

	_, err = h.orch.Complete(h.orch.Fetch(context.Background(), first.Token))
	require.NoError(t, err)
	assert.False(t, h.orch.InProgress())
	assert.Equal(t, 1, h.manager.Len())
}

func TestBegin_ManualAddDuringSyncIsAllowed(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A")})

	start, err := h.orch.Begin()
	require.NoError(t, err)

	_, err = h.manager.Add(servers.Entry{Name: "manual"})
	require.NoError(t, err)

	_, err = h.orch.Complete(h.orch.Fetch(context.Background(), start.Token))
	require.NoError(t, err)
	got := h.manager.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "manual", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
}

func TestComplete_WithoutBegin(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{})
	_, err := h.orch.Complete(remote.Result{Kind: remote.KindSuccess})
	assert.ErrorIs(t, err, ErrNotSyncing)
}

func TestRequest_ReportsRejectedItems(t *testing.T) {
	h := newHarness(t, "tok", nil, remote.Result{
		Kind:       remote.KindSuccess,
		Candidates: candidates("A"),
		Rejected:   []remote.Rejection{{Index: 1, Reason: "missing name"}},
	})
	rep, err := h.orch.Request(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Added, 1)
	assert.Len(t, rep.Rejected, 1)
}

type failingStore struct{}

func (failingStore) Get() (string, bool, error) { return "", false, errors.New("locked") }
func (failingStore) Set(string) error           { return nil }

func TestBegin_StoreReadError(t *testing.T) {
	m, err := servers.NewManager(nil)
	require.NoError(t, err)
	f := &fakeFetcher{}
	o := New(failingStore{}, f, m, notify.NewBoard(), nil)

	_, err = o.Request(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateIdle, o.State())
	assert.Zero(t, f.calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "prompting-for-token", StatePromptingForToken.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestComplete_AddFailureKeepsAppliedEntries(t *testing.T) {
	m, err := servers.NewManager(nil)
	require.NoError(t, err)
	coll := &flakyCollection{Manager: m, ok: 1}
	f := &fakeFetcher{result: remote.Result{Kind: remote.KindSuccess, Candidates: candidates("A", "B", "C")}}
	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set("tok"))
	b := notify.NewBoard()
	o := New(store, f, coll, b, nil)

	rep, err := o.Request(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `adding server "B"`)
	assert.Equal(t, StatusFailed, rep.Status)

	require.Len(t, rep.Added, 1, "entries applied before the failure are reported")
	assert.Equal(t, "A", rep.Added[0].Name)
	assert.Equal(t, 1, m.Len())
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, rep.Added[0].ID, sel.ID)

	assert.Equal(t, notify.LevelError, lastNotice(t, b).Level)
	assert.Equal(t, StateIdle, o.State())
	assert.False(t, o.InProgress())
}
