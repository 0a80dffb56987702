// Package sync drives one synchronization cycle: credential check, token
// prompt, remote fetch, merge and apply.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ruminaider/mcp-roster/internal/credentials"
	"github.com/ruminaider/mcp-roster/internal/merge"
	"github.com/ruminaider/mcp-roster/internal/notify"
	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
)

// NotificationKey is shared by every notice a sync posts, so each replaces
// the previous one.
const NotificationKey = "mcp-sync"

// User-facing messages.
const (
	LoadingMessage      = "Syncing servers..."
	UnauthorizedMessage = "The sync provider rejected your token. Enter a new one to continue."
	failureMessage      = "Sync failed: %v"
)

// ErrNotPrompting is returned by SubmitToken outside the prompting state.
var ErrNotPrompting = errors.New("no token prompt is open")

// ErrNotSyncing is returned by Complete when no fetch was started.
var ErrNotSyncing = errors.New("no sync in progress")

// State is the orchestrator's position in the sync cycle.
type State int32

const (
	StateIdle State = iota
	StateCheckingCredential
	StatePromptingForToken
	StateSyncing
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingCredential:
		return "checking-credential"
	case StatePromptingForToken:
		return "prompting-for-token"
	case StateSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// Fetcher lists candidate servers from the provider.
type Fetcher interface {
	FetchCandidates(ctx context.Context, token string) remote.Result
}

// Collection is the part of the local collection manager the sync applies to.
type Collection interface {
	Entries() []servers.Entry
	Add(servers.Entry) (servers.Entry, error)
	SetSelected(id string) error
}

// Step tells the caller what to do after Begin or SubmitToken.
type Step int

const (
	StepBusy   Step = iota // a sync is already in flight; request ignored
	StepPrompt             // show the token prompt
	StepFetch              // call Fetch with Start.Token, then Complete
)

// Start is returned by Begin and SubmitToken.
type Start struct {
	Step  Step
	Token string
}

// Status summarises a finished request.
type Status int

const (
	StatusBusy Status = iota
	StatusNeedsToken
	StatusAdded
	StatusNothingNew
	StatusUnauthorized
	StatusFailed
)

// Report describes what a request did.
type Report struct {
	Status   Status
	Added    []servers.Entry
	Rejected []remote.Rejection
	Message  string
	Err      error // remote error for StatusUnauthorized and StatusFailed
}

// Orchestrator runs the sync state machine. It may be driven in one call
// (Request, Submit) or in halves (Begin/SubmitToken, Fetch, Complete) when
// the fetch must run off the caller's goroutine.
type Orchestrator struct {
	store      credentials.Store
	fetcher    Fetcher
	collection Collection
	notifier   notify.Notifier
	log        *zap.Logger

	state      atomic.Int32
	inProgress atomic.Bool
}

// New creates an orchestrator in the idle state.
func New(store credentials.Store, fetcher Fetcher, collection Collection, notifier notify.Notifier, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:      store,
		fetcher:    fetcher,
		collection: collection,
		notifier:   notifier,
		log:        log,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// InProgress reports whether a fetch is in flight. Sync triggers should be
// disabled while it is true.
func (o *Orchestrator) InProgress() bool {
	return o.inProgress.Load()
}

func (o *Orchestrator) setState(s State) {
	prev := State(o.state.Swap(int32(s)))
	if prev != s {
		o.log.Debug("sync state", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

// Begin handles a sync request. Without a stored token it moves to the
// prompt and never touches the fetcher.
func (o *Orchestrator) Begin() (Start, error) {
	if o.InProgress() {
		o.log.Debug("sync request ignored, already in progress")
		return Start{Step: StepBusy}, nil
	}

	o.setState(StateCheckingCredential)
	token, ok, err := o.store.Get()
	if err != nil {
		o.setState(StateIdle)
		return Start{}, fmt.Errorf("reading sync token: %w", err)
	}
	if !ok || token == "" {
		o.setState(StatePromptingForToken)
		return Start{Step: StepPrompt}, nil
	}
	return o.startFetch(token), nil
}

// SubmitToken handles a token entered at the prompt. Whitespace is trimmed;
// an empty value is ignored and the prompt stays open. Otherwise the token
// is stored and the fetch starts immediately.
func (o *Orchestrator) SubmitToken(raw string) (Start, error) {
	if o.State() != StatePromptingForToken {
		return Start{}, ErrNotPrompting
	}
	token := strings.TrimSpace(raw)
	if token == "" {
		return Start{Step: StepPrompt}, nil
	}
	if err := o.store.Set(token); err != nil {
		return Start{}, fmt.Errorf("storing sync token: %w", err)
	}
	o.log.Info("sync token updated")
	if o.InProgress() {
		return Start{Step: StepBusy}, nil
	}
	return o.startFetch(token), nil
}

// CancelPrompt closes the prompt with no side effects.
func (o *Orchestrator) CancelPrompt() {
	o.state.CompareAndSwap(int32(StatePromptingForToken), int32(StateIdle))
}

func (o *Orchestrator) startFetch(token string) Start {
	if !o.inProgress.CompareAndSwap(false, true) {
		return Start{Step: StepBusy}
	}
	o.setState(StateSyncing)
	o.notifier.Loading(LoadingMessage, NotificationKey)
	return Start{Step: StepFetch, Token: token}
}

// Fetch calls the remote provider. It is the only blocking step and may run
// on any goroutine.
func (o *Orchestrator) Fetch(ctx context.Context, token string) remote.Result {
	return o.fetcher.FetchCandidates(ctx, token)
}

// Complete applies a fetch result: merges, adds new entries in order,
// selects the first one and posts the outcome. An unauthorized result
// reopens the prompt and leaves both the collection and the stored token
// alone. If an add fails, the entries added before it are kept and listed
// in Report.Added alongside the error. The in-progress flag is cleared on
// every path.
func (o *Orchestrator) Complete(res remote.Result) (Report, error) {
	if !o.InProgress() || o.State() != StateSyncing {
		return Report{}, ErrNotSyncing
	}
	defer o.inProgress.Store(false)

	switch res.Kind {
	case remote.KindUnauthorized:
		o.log.Warn("sync unauthorized", zap.Error(res.Err))
		o.notifier.Error(UnauthorizedMessage, NotificationKey)
		o.setState(StatePromptingForToken)
		return Report{Status: StatusUnauthorized, Message: UnauthorizedMessage, Err: res.Err}, nil

	case remote.KindFailure:
		msg := fmt.Sprintf(failureMessage, res.Err)
		o.log.Warn("sync failed", zap.Error(res.Err))
		o.notifier.Error(msg, NotificationKey)
		o.setState(StateIdle)
		return Report{Status: StatusFailed, Message: msg, Err: res.Err}, nil
	}

	if len(res.Rejected) > 0 {
		o.log.Info("provider items rejected", zap.Int("count", len(res.Rejected)))
	}

	out := merge.Merge(res.Candidates, o.collection.Entries())
	report := Report{Rejected: res.Rejected, Message: out.Message}

	for _, e := range out.Added {
		stored, err := o.collection.Add(e)
		if err != nil {
			// Entries added so far stay in the collection and are reported
			// so the caller can persist them.
			o.selectFirst(report.Added)
			o.setState(StateIdle)
			msg := fmt.Sprintf(failureMessage, err)
			o.notifier.Error(msg, NotificationKey)
			report.Status = StatusFailed
			report.Message = msg
			return report, fmt.Errorf("adding server %q: %w", e.Name, err)
		}
		report.Added = append(report.Added, stored)
	}

	if len(report.Added) > 0 {
		o.selectFirst(report.Added)
		o.notifier.Success(out.Message, NotificationKey)
		report.Status = StatusAdded
	} else {
		o.notifier.Info(out.Message, NotificationKey)
		report.Status = StatusNothingNew
	}

	o.log.Info("sync complete",
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("added", len(report.Added)),
		zap.Int("skipped", out.Skipped))
	o.setState(StateIdle)
	return report, nil
}

func (o *Orchestrator) selectFirst(added []servers.Entry) {
	if len(added) == 0 {
		return
	}
	if err := o.collection.SetSelected(added[0].ID); err != nil {
		o.log.Warn("selecting synced server", zap.Error(err))
	}
}

// Request runs a whole sync request synchronously.
func (o *Orchestrator) Request(ctx context.Context) (Report, error) {
	start, err := o.Begin()
	if err != nil {
		return Report{}, err
	}
	return o.run(ctx, start)
}

// Submit runs a token submission synchronously.
func (o *Orchestrator) Submit(ctx context.Context, raw string) (Report, error) {
	start, err := o.SubmitToken(raw)
	if err != nil {
		return Report{}, err
	}
	return o.run(ctx, start)
}

func (o *Orchestrator) run(ctx context.Context, start Start) (Report, error) {
	switch start.Step {
	case StepBusy:
		return Report{Status: StatusBusy}, nil
	case StepPrompt:
		return Report{Status: StatusNeedsToken}, nil
	}
	return o.Complete(o.Fetch(ctx, start.Token))
}
