// Package orchestrator is the top-level session façade.
//
// It creates sessions, feeds user input through the analysis collaborator
// and the phase state machine, persists every accepted transition, and
// finalizes completed sessions. Collaborators are injected as narrow
// interfaces so each can be replaced in tests.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollandkevint/ideally-sub002/internal/pathway"
	"github.com/hollandkevint/ideally-sub002/internal/session"
	"github.com/hollandkevint/ideally-sub002/internal/store"
	"github.com/hollandkevint/ideally-sub002/internal/template"
	"github.com/hollandkevint/ideally-sub002/internal/timebox"
)

// Default collaborator timeouts.
const (
	DefaultAnalysisTimeout = 30 * time.Second
	DefaultStorageTimeout  = 10 * time.Second
)

// Analyzer interprets one user input for the current phase.
//
// The orchestrator tolerates failure: an error or timeout here is replaced
// with an empty fallback result and never propagated to the caller.
type Analyzer interface {
	Analyze(ctx context.Context, phaseID, userInput string, sessCtx session.Context) (session.PhaseResult, error)
}

// DocumentGenerator produces the final session deliverables.
type DocumentGenerator interface {
	GenerateDocuments(ctx context.Context, sess *session.Session) ([]session.Document, error)
	ExtractActionItems(ctx context.Context, sess *session.Session) ([]session.ActionItem, error)
}

// SessionStore is the durable storage collaborator.
//
// [store.FileStore] and [store.MemoryStore] satisfy this.
type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]*session.Session, error)
}

// CreateConfig describes the session to create.
type CreateConfig struct {
	UserID      string
	WorkspaceID string
	PathwayID   string
}

// Advancement is the structured outcome of one [Orchestrator.AdvanceSession]
// call.
type Advancement struct {
	SessionID  string
	Action     session.NextAction
	Advanced   bool
	Message    string
	Transition session.Transition
	Progress   session.Progress

	// TimeWarning classifies how much of the session's allocated time
	// budget remains.
	TimeWarning timebox.WarningLevel
}

// Config holds orchestrator tunables. Zero values take the defaults.
type Config struct {
	AnalysisTimeout time.Duration
	StorageTimeout  time.Duration
}

// Orchestrator coordinates pathways, templates, the state machine, and the
// external collaborators for all live sessions.
//
// Advancement calls on the same session id are serialized through a
// per-session lock; different sessions proceed in parallel.
type Orchestrator struct {
	pathways  *pathway.Registry
	templates *template.Store
	machine   *session.Machine
	store     SessionStore
	analyzer  Analyzer
	docs      DocumentGenerator
	log       *zap.Logger

	analysisTimeout time.Duration
	storageTimeout  time.Duration
	newID           func() string

	mu    sync.Mutex
	live  map[string]*session.Session
	locks map[string]*sync.Mutex
}

// New creates an [Orchestrator]. analyzer and docs may be nil: a nil
// analyzer always yields the fallback result, and a nil docs generator
// finalizes sessions without documents.
func New(
	pathways *pathway.Registry,
	templates *template.Store,
	sessions SessionStore,
	analyzer Analyzer,
	docs DocumentGenerator,
	log *zap.Logger,
	cfg Config,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = DefaultStorageTimeout
	}
	return &Orchestrator{
		pathways:        pathways,
		templates:       templates,
		machine:         session.NewMachine(templates),
		store:           sessions,
		analyzer:        analyzer,
		docs:            docs,
		log:             log.Named("orchestrator"),
		analysisTimeout: cfg.AnalysisTimeout,
		storageTimeout:  cfg.StorageTimeout,
		newID:           uuid.NewString,
		live:            make(map[string]*session.Session),
		locks:           make(map[string]*sync.Mutex),
	}
}

// Machine exposes the state machine for completion-rule registration.
func (o *Orchestrator) Machine() *session.Machine {
	return o.machine
}

// lockFor returns the serialization lock for a session id.
func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

func (o *Orchestrator) getLive(id string) (*session.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.live[id]
	return sess, ok
}

func (o *Orchestrator) setLive(sess *session.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.live[sess.ID] = sess
}

// CreateSession resolves the pathway, preloads every template it names,
// starts the first phase's timer, and persists the new session.
func (o *Orchestrator) CreateSession(ctx context.Context, cfg CreateConfig) (*session.Session, error) {
	pw, ok := o.pathways.Get(cfg.PathwayID)
	if !ok {
		return nil, fmt.Errorf("failed to create session for pathway %q: %w", cfg.PathwayID, pathway.ErrUnknownPathway)
	}

	// Preloading the whole pathway means every later Advance is a pure
	// cache hit and a broken template surfaces before any state exists.
	for _, tid := range pw.Templates {
		if _, err := o.templates.Load(ctx, tid); err != nil {
			return nil, fmt.Errorf("failed to load template %q for pathway %q: %w", tid, pw.ID, err)
		}
	}

	firstTpl, _ := o.templates.GetCached(pw.Templates[0])
	firstPhase := &firstTpl.Phases[0]

	now := time.Now()
	sess := &session.Session{
		ID:              o.newID(),
		UserID:          cfg.UserID,
		WorkspaceID:     cfg.WorkspaceID,
		PathwayID:       pw.ID,
		Templates:       append([]string(nil), pw.Templates...),
		CurrentTemplate: firstTpl.ID,
		CurrentPhase:    firstPhase.ID,
		StartedAt:       now,
		Metadata: session.Metadata{
			Status:    session.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	o.machine.StartPhase(sess, firstPhase)

	if err := o.persist(ctx, sess); err != nil {
		return nil, err
	}
	o.setLive(sess)

	o.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("pathway", pw.ID),
		zap.String("first_phase", firstPhase.ID))
	return sess.Clone(), nil
}

// AdvanceSession folds one user input into the session and asks the state
// machine for the transition.
//
// The advance runs on a clone: the live session is replaced only after the
// new state is durably persisted, so a failed or cancelled call leaves the
// session at its last persisted state.
func (o *Orchestrator) AdvanceSession(ctx context.Context, sessionID, userInput string) (*Advancement, error) {
	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := o.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	now := time.Now()
	next.Context.Responses = append(next.Context.Responses, session.Response{
		PhaseID: next.CurrentPhase,
		Input:   userInput,
		At:      now,
	})

	result := o.analyze(ctx, next.CurrentPhase, userInput, next.Context)
	if next.Outputs.PhaseResults == nil {
		next.Outputs.PhaseResults = make(map[string]session.PhaseResult)
	}
	merged := next.Outputs.PhaseResults[next.CurrentPhase]
	merged.Merge(result)
	next.Outputs.PhaseResults[next.CurrentPhase] = merged

	tr, err := o.machine.Advance(next, merged)
	if err != nil {
		return nil, err
	}

	if err := o.persist(ctx, next); err != nil {
		return nil, err
	}
	o.setLive(next)

	o.log.Info("session advanced",
		zap.String("session_id", sessionID),
		zap.String("action", string(tr.Action)),
		zap.String("phase", next.CurrentPhase))

	return &Advancement{
		SessionID:   sessionID,
		Action:      tr.Action,
		Advanced:    tr.Advanced,
		Message:     messageFor(tr),
		Transition:  tr,
		Progress:    next.Progress,
		TimeWarning: budgetWarning(next),
	}, nil
}

// budgetWarning classifies the session's overall time use: total time spent
// against the summed allocations of every phase started so far.
func budgetWarning(sess *session.Session) timebox.WarningLevel {
	var budget time.Duration
	for _, alloc := range sess.Allocations {
		budget += time.Duration(alloc.Minutes) * time.Minute
	}
	return timebox.Warning(budget, time.Since(sess.StartedAt))
}

// GetSession returns a copy of the session, consulting the live table
// before the store.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := o.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// ListSessions returns every persisted session, newest first.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]*session.Session, error) {
	sctx, cancel := context.WithTimeout(ctx, o.storageTimeout)
	defer cancel()
	return o.store.List(sctx)
}

// RecordElicitation records a numbered menu choice for the session's
// current phase and persists it.
func (o *Orchestrator) RecordElicitation(ctx context.Context, sessionID string, choice int) error {
	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := o.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	event := session.ElicitationEvent{
		PhaseID: current.CurrentPhase,
		Choice:  choice,
		At:      time.Now(),
	}
	if tpl, ok := o.templates.GetCached(current.CurrentTemplate); ok {
		if phase := tpl.PhaseByID(current.CurrentPhase); phase != nil {
			for _, ec := range phase.Elicitation {
				if ec.Number == choice {
					event.Category = ec.Category
					break
				}
			}
		}
	}

	next := current.Clone()
	next.Context.Elicitations = append(next.Context.Elicitations, event)
	next.Metadata.UpdatedAt = event.At

	if err := o.persist(ctx, next); err != nil {
		return err
	}
	o.setLive(next)
	return nil
}

// CompleteSession finalizes the session: generates documents and action
// items, marks it completed, and persists.
func (o *Orchestrator) CompleteSession(ctx context.Context, sessionID string) (*session.Session, error) {
	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := o.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if o.docs != nil {
		docs, err := o.docs.GenerateDocuments(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to generate documents for session %s: %w", sessionID, err)
		}
		items, err := o.docs.ExtractActionItems(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to extract action items for session %s: %w", sessionID, err)
		}
		next.Outputs.Documents = append(next.Outputs.Documents, docs...)
		next.Outputs.ActionItems = append(next.Outputs.ActionItems, items...)
	}

	now := time.Now()
	next.Progress.Overall = 1.0
	next.Progress.CurrentStep = "Session complete"
	next.Progress.NextSteps = nil
	next.Metadata.Status = session.StatusCompleted
	next.Metadata.UpdatedAt = now
	next.Metadata.CompletedAt = now

	if err := o.persist(ctx, next); err != nil {
		return nil, err
	}
	o.setLive(next)

	o.log.Info("session completed",
		zap.String("session_id", sessionID),
		zap.Int("documents", len(next.Outputs.Documents)),
		zap.Int("action_items", len(next.Outputs.ActionItems)))
	return next.Clone(), nil
}

// resolve finds a session in the live table or falls back to the store.
func (o *Orchestrator) resolve(ctx context.Context, sessionID string) (*session.Session, error) {
	if sess, ok := o.getLive(sessionID); ok {
		return sess, nil
	}

	sctx, cancel := context.WithTimeout(ctx, o.storageTimeout)
	defer cancel()

	sess, err := o.store.Get(sctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{SessionID: sessionID}
		}
		return nil, &PersistenceError{SessionID: sessionID, Err: err}
	}

	// A session loaded from disk needs its pathway templates cached before
	// the machine can evaluate it.
	for _, tid := range sess.Templates {
		if _, err := o.templates.Load(ctx, tid); err != nil {
			return nil, fmt.Errorf("failed to load template %q for session %s: %w", tid, sessionID, err)
		}
	}

	o.setLive(sess)
	return sess, nil
}

// analyze runs the analysis collaborator with a bounded timeout, degrading
// to an empty result on any failure.
func (o *Orchestrator) analyze(ctx context.Context, phaseID, userInput string, sessCtx session.Context) session.PhaseResult {
	if o.analyzer == nil {
		return session.PhaseResult{}
	}

	actx, cancel := context.WithTimeout(ctx, o.analysisTimeout)
	defer cancel()

	result, err := o.analyzer.Analyze(actx, phaseID, userInput, sessCtx)
	if err != nil {
		o.log.Warn("analysis failed, using fallback result",
			zap.String("phase", phaseID),
			zap.Error(err))
		return session.PhaseResult{}
	}
	return result
}

func (o *Orchestrator) persist(ctx context.Context, sess *session.Session) error {
	sctx, cancel := context.WithTimeout(ctx, o.storageTimeout)
	defer cancel()

	if err := o.store.Save(sctx, sess); err != nil {
		return &PersistenceError{SessionID: sess.ID, Err: err}
	}
	return nil
}

func messageFor(tr session.Transition) string {
	switch tr.Action {
	case session.ActionContinuePhase:
		return fmt.Sprintf("Keep going: %s remaining in this phase.", tr.Remaining.Round(time.Second))
	case session.ActionAdvancePhase:
		return fmt.Sprintf("Phase %q complete. Moving on to %q.", tr.FromPhase, tr.ToPhase)
	case session.ActionCompleteTemplate:
		return fmt.Sprintf("Template %q complete. Starting %q.", tr.FromTemplate, tr.ToTemplate)
	case session.ActionCompleteSession:
		return "All phases complete. The session is ready to finalize."
	default:
		return string(tr.Action)
	}
}
