// Package engine orchestrates one full threat assessment: collect
// observations and facts, run the inference strategies and heuristic
// metrics, compose the granular scores, update the trend history,
// classify, recommend, select a protective action, and filter it through
// the triage validator.
//
// Analyze is non-reentrant per vault: two assessments of the same vault
// serialise on a per-vault lock, while different vaults run in parallel.
// The engine performs no network I/O of its own; the collaborator
// interfaces are expected to have their data ready.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vaultsentry/vaultsentry/internal/heuristics"
	"github.com/vaultsentry/vaultsentry/internal/inference"
	"github.com/vaultsentry/vaultsentry/internal/observe"
	"github.com/vaultsentry/vaultsentry/internal/remediation"
	"github.com/vaultsentry/vaultsentry/internal/scoring"
	"github.com/vaultsentry/vaultsentry/internal/store"
	"github.com/vaultsentry/vaultsentry/internal/threat"
	"github.com/vaultsentry/vaultsentry/internal/trend"
	"github.com/vaultsentry/vaultsentry/internal/triage"
)

// ErrFetchFailed wraps collaborator failures during data fetch. No
// partial assessment is produced when this is returned.
var ErrFetchFailed = errors.New("fetching vault data failed")

// defaultVaultCapacity bounds the per-vault state the engine keeps in
// memory (trend histories and assessment locks) when the config does not
// set a capacity.
const defaultVaultCapacity = 1024

// AccessLogSource supplies the vault's access log entries.
type AccessLogSource interface {
	FetchAccessLogs(ctx context.Context, vaultID uuid.UUID) ([]threat.AccessLogEntry, error)
}

// DocumentSource supplies the vault's document metadata.
type DocumentSource interface {
	FetchDocuments(ctx context.Context, vaultID uuid.UUID) ([]threat.DocumentMeta, error)
}

// VaultStateSource supplies the live state the triage validator needs.
type VaultStateSource interface {
	FetchVaultState(ctx context.Context, vaultID uuid.UUID) (triage.VaultState, error)
}

// ActionExecutor carries out a validated remediation action.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, action remediation.RemediationAction) error
}

// Metrics is an optional hook for recording engine activity. All methods
// must be safe for concurrent use.
type Metrics interface {
	AssessmentCompleted(level threat.GranularThreatLevel, action remediation.ProtectiveAction, duration time.Duration)
}

// Assessment is the full output of one Analyze call.
type Assessment struct {
	ID              uuid.UUID                      `json:"id"`
	VaultID         uuid.UUID                      `json:"vault_id"`
	Timestamp       time.Time                      `json:"timestamp"`
	Scores          threat.GranularThreatScores    `json:"scores"`
	Heuristics      heuristics.Result              `json:"heuristics"`
	Level           threat.GranularThreatLevel     `json:"level"`
	TopThreats      []threat.InferenceContribution `json:"top_threats"`
	Recommendations []remediation.Recommendation   `json:"recommendations"`
	SelectedAction  remediation.ProtectiveAction   `json:"selected_action"`
	Triage          remediation.TriageResult       `json:"triage"`
	Rejected        []triage.Rejection             `json:"rejected_actions,omitempty"`
}

// Config holds the engine's injectable collaborators.
type Config struct {
	Logs     AccessLogSource
	Docs     DocumentSource
	State    VaultStateSource
	Scores   store.ScoreStore
	Executor ActionExecutor
	Metrics  Metrics

	// SessionKey is the HMAC key shared with the authentication service,
	// used to verify session tokens during triage validation.
	SessionKey []byte

	// VaultCapacity bounds how many vaults the engine keeps trend
	// history and lock state for. Zero means a default of 1024.
	VaultCapacity int

	Logger *zap.Logger
}

// Engine runs threat assessments. Create with New; the zero value is not
// usable.
type Engine struct {
	cfg       Config
	inference *inference.Engine
	trend     *trend.Tracker
	validator *triage.Validator
	logger    *zap.Logger

	mu    sync.Mutex
	locks *lru.Cache[uuid.UUID, *sync.Mutex]

	// now is replaceable in tests.
	now func() time.Time
}

// New creates an Engine with the given collaborators.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vaultCap := cfg.VaultCapacity
	if vaultCap <= 0 {
		vaultCap = defaultVaultCapacity
	}
	locks, err := lru.New[uuid.UUID, *sync.Mutex](vaultCap)
	if err != nil {
		panic(err)
	}
	return &Engine{
		cfg:       cfg,
		inference: inference.New(),
		trend:     trend.NewWithCapacity(vaultCap),
		validator: triage.New(cfg.SessionKey),
		logger:    logger,
		locks:     locks,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs one full assessment of the vault. It is exclusive per
// vault id; concurrent calls for the same vault serialise.
func (e *Engine) Analyze(ctx context.Context, vaultID uuid.UUID) (*Assessment, error) {
	lock := e.vaultLock(vaultID)
	lock.Lock()
	defer lock.Unlock()

	started := e.now()

	logs, err := e.cfg.Logs.FetchAccessLogs(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("%w: access logs: %v", ErrFetchFailed, err)
	}
	docs, err := e.cfg.Docs.FetchDocuments(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("%w: documents: %v", ErrFetchFailed, err)
	}

	prior, err := e.cfg.Scores.GetThreatScore(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("%w: prior score: %v", ErrFetchFailed, err)
	}

	assessment := e.assess(vaultID, started, logs, docs, prior)

	if e.cfg.State != nil {
		state, err := e.cfg.State.FetchVaultState(ctx, vaultID)
		if err != nil {
			return nil, fmt.Errorf("%w: vault state: %v", ErrFetchFailed, err)
		}
		assessment.Triage, assessment.Rejected = e.validator.FilterTriage(assessment.Triage, state)
		for _, r := range assessment.Rejected {
			e.logger.Info("triage dropped action",
				zap.String("vault_id", vaultID.String()),
				zap.String("kind", string(r.Action.Kind)),
				zap.String("reason", r.Reason),
			)
		}
	}

	if err := e.cfg.Scores.PutThreatScore(ctx, vaultID, assessment.Scores.Composite); err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}

	// All fallible calls are behind us; only now does the assessment enter
	// the trend history. The per-vault lock keeps this consistent with the
	// movement derived in assess.
	e.trend.Record(vaultID, threat.ThreatScoreSnapshot{
		Timestamp: assessment.Timestamp,
		Composite: assessment.Scores.Composite,
		Category:  assessment.Scores.Category,
		Logic:     assessment.Scores.Logic,
	})

	duration := e.now().Sub(started)
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.AssessmentCompleted(assessment.Level, assessment.SelectedAction, duration)
	}
	e.logger.Info("assessment complete",
		zap.String("vault_id", vaultID.String()),
		zap.String("assessment_id", assessment.ID.String()),
		zap.Float64("composite", assessment.Scores.Composite),
		zap.String("level", assessment.Level.String()),
		zap.String("action", string(assessment.SelectedAction)),
		zap.Duration("duration", duration),
	)
	return assessment, nil
}

// assess runs the pure part of the pipeline over already-fetched data.
func (e *Engine) assess(vaultID uuid.UUID, started time.Time, logs []threat.AccessLogEntry, docs []threat.DocumentMeta, prior float64) *Assessment {
	observations := observe.Collect(vaultID, logs, docs)
	facts := observe.BuildFacts(vaultID, docs)

	// The three heuristic calculators are independent; run them in
	// parallel with the inference pass.
	var (
		wg      sync.WaitGroup
		geo     heuristics.GeoMetrics
		access  heuristics.AccessMetrics
		content heuristics.ContentMetrics
	)
	wg.Add(3)
	go func() { defer wg.Done(); geo = heuristics.AnalyzeGeographic(logs) }()
	go func() { defer wg.Done(); access = heuristics.AnalyzeAccessPattern(logs) }()
	go func() { defer wg.Done(); content = heuristics.AnalyzeContent(docs) }()

	inferences := e.inference.Infer(observations, facts)
	wg.Wait()
	heur := heuristics.Combine(geo, access, content)

	scores := scoring.Compute(inferences)
	scores.Composite = scoring.Augment(scores.Composite, heur.Composite, prior)

	// Movement is derived without touching the history; the snapshot is
	// recorded by Analyze once the score has been persisted, so a failed
	// run leaves no trace in the trend.
	movement := e.trend.Peek(vaultID, threat.ThreatScoreSnapshot{
		Timestamp: started,
		Composite: scores.Composite,
		Category:  scores.Category,
		Logic:     scores.Logic,
	})
	scores.Delta = movement.Delta
	scores.Velocity = movement.Velocity

	level := threat.ClassifyScore(scores.Composite)
	selected := remediation.SelectAction(scores, level)

	return &Assessment{
		ID:              uuid.New(),
		VaultID:         vaultID,
		Timestamp:       started,
		Scores:          scores,
		Heuristics:      heur,
		Level:           level,
		TopThreats:      scoring.TopThreats(scores.Contributions),
		Recommendations: remediation.Generate(scores, inferences),
		SelectedAction:  selected,
		Triage:          remediation.BuildTriage(vaultID, level, selected, inferences),
	}
}

// History returns the vault's recorded snapshots, oldest first.
func (e *Engine) History(vaultID uuid.UUID) []threat.ThreatScoreSnapshot {
	return e.trend.History(vaultID)
}

// ValidateAction exposes the triage validator for callers that want to
// check an action without running a full assessment.
func (e *Engine) ValidateAction(action remediation.RemediationAction, state triage.VaultState) (bool, string) {
	return e.validator.Validate(action, state)
}

// ExecuteAction validates the action against live state and, when the
// preconditions hold, hands it to the executor collaborator. The engine
// never retries; retry policy belongs to the caller.
func (e *Engine) ExecuteAction(ctx context.Context, action remediation.RemediationAction) error {
	if e.cfg.State == nil || e.cfg.Executor == nil {
		return errors.New("action execution is not configured")
	}
	state, err := e.cfg.State.FetchVaultState(ctx, action.VaultID)
	if err != nil {
		return fmt.Errorf("%w: vault state: %v", ErrFetchFailed, err)
	}
	if ok, reason := e.validator.Validate(action, state); !ok {
		return fmt.Errorf("action %s rejected: %s", action.Kind, reason)
	}
	if err := e.cfg.Executor.ExecuteAction(ctx, action); err != nil {
		return fmt.Errorf("execute %s: %w", action.Kind, err)
	}
	e.logger.Info("action executed",
		zap.String("vault_id", action.VaultID.String()),
		zap.String("kind", string(action.Kind)),
	)
	return nil
}

// vaultLock returns the vault's mutex, creating one on first use. The
// set of locks is bounded the same way the trend tracker is; exclusivity
// holds as long as no more vaults than the capacity are assessed
// concurrently, and an evicted idle lock is simply recreated.
func (e *Engine) vaultLock(vaultID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.locks.Get(vaultID); ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks.Add(vaultID, l)
	return l
}
