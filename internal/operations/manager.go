package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
	"mriopack/internal/sources"
)

// Manager orchestrates conversion runs
type Manager struct {
	registry *Registry
	versions *schema.Registry
	config   *Config
	tracer   *ConversionTracer
	logger   *slog.Logger

	// Active conversions
	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates a manager running the steps of registry against the
// versions of versions
func NewManager(registry *Registry, versions *schema.Registry, config *Config, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if versions == nil {
		versions = schema.Default()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:   registry,
		versions:   versions,
		config:     config,
		logger:     logger.With(slog.String("component", "operations")),
		operations: make(map[string]*OperationState),
	}
}

// SetTracer installs the OpenTelemetry instrumentation
func (m *Manager) SetTracer(tracer *ConversionTracer) {
	m.tracer = tracer
}

// GetRegistry returns the step registry
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs a conversion. On failure the returned response still carries
// the state of every step.
func (m *Manager) Execute(ctx context.Context, req ConversionRequest) (*ConversionResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if m.tracer == nil {
		tracer, err := NewConversionTracer(nil)
		if err != nil {
			return nil, err
		}
		m.tracer = tracer
	}

	state := NewOperationState(req.ID)
	state.Options = req.Options
	m.storeOperation(state)
	defer m.removeOperation(req.ID)

	ctx, span := m.tracer.TraceConversion(ctx, req.ID, req.Version)
	m.logger.InfoContext(ctx, "conversion_start",
		slog.String("operation_id", req.ID),
		slog.String("version", req.Version),
		slog.String("source_dir", req.SourceDir),
		slog.Bool("normalize", req.Options.Normalize),
		slog.Bool("flush", req.Options.Flush))

	err := m.prepare(state, req)
	if err == nil {
		var steps []Step
		steps, err = m.registry.GetDependencyOrder()
		if err != nil {
			err = apperrors.NewInternalError("invalid step registry", err)
		} else {
			for _, step := range steps {
				state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
			}
			state.Start()
			err = m.executeSequential(ctx, state, steps)
		}
	}

	var staged int64
	if err == nil {
		staged = stagedBytes(state)
		state.Complete()
		m.logger.InfoContext(ctx, "conversion_complete",
			slog.String("operation_id", req.ID),
			slog.String("archive", state.Archive),
			slog.Duration("duration", state.Duration()))
	} else {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			state.Cancel(err)
		} else {
			state.Fail(err)
		}
		removed := state.discardStaged()
		m.logger.ErrorContext(ctx, "conversion_error",
			slog.String("operation_id", req.ID),
			slog.String("version", req.Version),
			slog.String("error_type", string(apperrors.GetErrorType(err))),
			slog.String("error", err.Error()),
			slog.Int("staged_files_removed", removed))
	}
	m.tracer.RecordConversionCompletion(ctx, span, req.Version, state.Duration(), state.GetStatus(), err, staged)

	return m.createResponse(state), err
}

// prepare resolves the version and the directories of a request
func (m *Manager) prepare(state *OperationState, req ConversionRequest) error {
	v, err := m.versions.Resolve(req.Version)
	if err != nil {
		return err
	}
	state.Version = v

	info, err := os.Stat(req.SourceDir)
	if err != nil || !info.IsDir() {
		return apperrors.NewConfigError("source directory does not exist", err).
			WithResource(req.SourceDir).
			WithVersion(v.ID)
	}

	target := req.TargetDir
	if target == "" {
		target = filepath.Join(req.SourceDir, DefaultTargetDirName)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return apperrors.NewConfigError("cannot create target directory", err).
			WithResource(target).
			WithVersion(v.ID)
	}

	state.StagingDir = target
	state.Source = sources.NewDir(req.SourceDir, m.logger)
	return nil
}

// executeSequential executes steps one by one and stops at the first failure
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "conversion_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "conversion cancelled")
			return fmt.Errorf("conversion cancelled before step %s: %w", step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep checks, runs and records a single step
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return apperrors.NewInternalError(fmt.Sprintf("no state for step %s", step.ID()), nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Fail(err)
		return err
	}
	if err := step.Validate(state); err != nil {
		err = stepError(step.ID(), state.Version, "", err)
		stepState.Fail(err)
		return err
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStep(stepCtx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)

	if err != nil {
		err = stepError(step.ID(), state.Version, "", err)
		stepState.Fail(err)
		m.logger.ErrorContext(ctx, "step_error",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// skipRemaining marks every pending step as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStep(dep)
		if depState == nil {
			return apperrors.NewInternalError(fmt.Sprintf("step %s depends on unknown step %s", step.ID(), dep), nil)
		}
		if depState.GetStatus() != StepStatusCompleted {
			return apperrors.NewInternalError(
				fmt.Sprintf("step %s needs %s, which is %s", step.ID(), dep, depState.GetStatus()), nil,
			).WithStage(step.ID())
		}
	}
	return nil
}

// createResponse creates a conversion response from state
func (m *Manager) createResponse(state *OperationState) *ConversionResponse {
	resp := &ConversionResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Archive:  state.Archive,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Version != nil {
		resp.Version = state.Version.ID
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetOperation returns the state of a running conversion
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return state, nil
}

// ListOperations returns the IDs of the running conversions
func (m *Manager) ListOperations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.operations))
	for id := range m.operations {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) storeOperation(state *OperationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}

// stagedBytes sums the size of the files a run staged and still exist, plus
// the archive
func stagedBytes(state *OperationState) int64 {
	var total int64
	paths := state.Staged()
	if state.Archive != "" {
		paths = append(paths, state.Archive)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}
