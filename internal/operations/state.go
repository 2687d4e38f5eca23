package operations

import (
	"sync"
	"time"

	"curatecli/internal/provenance"
)

// RunStatus represents the overall status of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Context keys for data passed between steps.
const (
	ContextKeyRawDataset     = "raw_dataset"
	ContextKeyValidation     = "validation_result"
	ContextKeyQualityReport  = "quality_report"
	ContextKeyCuratedDataset = "curated_dataset"
	ContextKeyTransformLog   = "transformation_record"
	ContextKeyManifest       = "export_manifest"
)

// RunState is the complete state of one pipeline run. Steps read their
// inputs from the context, write their outputs back, and append lineage
// events to the provenance log.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Agent     string     `json:"agent"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	Provenance *provenance.Log `json:"-"`

	context map[string]interface{}
	err     error
}

// NewRunState creates a pending run state with a fresh provenance log.
func NewRunState(id, agent string) *RunState {
	return &RunState{
		ID:         id,
		Agent:      agent,
		Status:     RunStatusPending,
		StartTime:  time.Now(),
		Steps:      make(map[string]*StepState),
		Provenance: provenance.NewLog(id),
		context:    make(map[string]interface{}),
	}
}

// Start marks the run as running.
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed.
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed.
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.err = err
}

// Err returns the error that failed the run, if any.
func (s *RunState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// GetStep returns the state of a specific step.
func (s *RunState) GetStep(stepID string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Steps[stepID]
}

// SetStep stores the state of a specific step.
func (s *RunState) SetStep(stepID string, state *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps[stepID] = state
}

// GetContext retrieves a value from the run context.
func (s *RunState) GetContext(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.context[key]
	return val, ok
}

// SetContext stores a value in the run context.
func (s *RunState) SetContext(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = value
}

// Duration returns how long the run took, or the elapsed time if it is
// still running.
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
