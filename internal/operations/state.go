package operations

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"mriopack/internal/matrix"
	"mriopack/internal/nomenclature"
	"mriopack/internal/schema"
	"mriopack/internal/sources"
)

// OperationStatus represents the overall conversion status
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState is the state of one conversion run. The lifecycle fields are
// guarded by mu; the data fields are written by one step at a time and read by
// later steps only.
type OperationState struct {
	mu sync.RWMutex

	ID        string                `json:"id"`
	Status    OperationStatus       `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Steps     map[string]*StepState `json:"steps"`
	Error     error                 `json:"-"`

	Version    *schema.Version
	Options    Options
	Source     sources.Reader
	StagingDir string

	// FullProduction is the production vector as published. Production is
	// the vector the package is built from: pruned of zero outputs when
	// normalizing, otherwise identical to FullProduction.
	FullProduction *matrix.ProductionVector
	Production     *matrix.ProductionVector
	// Kept lists the positions of FullProduction that survive in Production
	Kept []int
	// Sectors and Products are the canonical axes derived from Production
	Sectors  matrix.Axis
	Products matrix.Axis

	Tables  *nomenclature.Tables
	Archive string

	staged []string
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep updates the state of a specific step
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// StagedPath returns the path of a staged file and records it so that a
// failed run can remove what it wrote
func (p *OperationState) StagedPath(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	path := filepath.Join(p.StagingDir, name)
	p.staged = append(p.staged, path)
	return path
}

// Staged returns the staged file paths in write order
func (p *OperationState) Staged() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.staged))
	copy(out, p.staged)
	return out
}

// discardStaged removes every file staged by this run
func (p *OperationState) discardStaged() int {
	removed := 0
	for _, path := range p.Staged() {
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed
}
