package provenance

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"curatecli/internal/errors"
)

// ErrLogClosed is returned when the log is used after Export finalized it.
var ErrLogClosed = errors.NewProvenanceError("provenance log already finalized", nil)

// Event is one lineage entry: the entity consumed or produced, the activity
// performed, the agent responsible, and the parameters used. Events are
// append-only and never mutated once recorded.
type Event struct {
	ID         string                 `json:"id"`
	Seq        int                    `json:"seq"`
	Entity     string                 `json:"entity"`
	Activity   string                 `json:"activity"`
	Agent      string                 `json:"agent"`
	Timestamp  time.Time              `json:"timestamp"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// SourceInfo is the citation block for the raw dataset.
type SourceInfo struct {
	Title           string `json:"title"`
	SourceURL       string `json:"source_url"`
	DOI             string `json:"doi,omitempty"`
	AcquisitionDate string `json:"acquisition_date"`
	License         string `json:"license"`
	OriginalAuthors string `json:"original_authors,omitempty"`
}

// Curator identifies who ran the curation.
type Curator struct {
	Name        string `json:"name"`
	Institution string `json:"institution,omitempty"`
	Contact     string `json:"contact,omitempty"`
}

// Environment captures the runtime the pipeline executed under.
type Environment struct {
	CapturedAt time.Time `json:"captured_at"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
	NumCPU     int       `json:"num_cpu"`
}

// QualityCheck records the outcome of one quality gate.
type QualityCheck struct {
	Name      string                 `json:"name"`
	Timestamp time.Time              `json:"timestamp"`
	Passed    bool                   `json:"passed"`
	Results   map[string]interface{} `json:"results,omitempty"`
}

// Note is a free-form curator annotation.
type Note struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
}

// Log is the append-only provenance record of one pipeline run. A Log is
// passed explicitly into each stage call; it holds no global state, so
// concurrent pipeline runs never interfere. After Export the log is closed
// and all mutating calls fail with ErrLogClosed.
type Log struct {
	mu          sync.Mutex
	runID       string
	createdAt   time.Time
	events      []Event
	source      *SourceInfo
	curator     *Curator
	environment *Environment
	checks      []QualityCheck
	notes       []Note
	closed      bool
	lastStamp   time.Time
}

// NewLog creates an empty provenance log for one run.
func NewLog(runID string) *Log {
	return &Log{
		runID:     runID,
		createdAt: time.Now(),
	}
}

// RunID returns the run this log belongs to.
func (l *Log) RunID() string {
	return l.runID
}

// Record appends one lineage event. Timestamps are monotonically
// non-decreasing across events.
func (l *Log) Record(entity, activity, agent string, parameters map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLogClosed
	}

	now := time.Now()
	if now.Before(l.lastStamp) {
		now = l.lastStamp
	}
	l.lastStamp = now

	l.events = append(l.events, Event{
		ID:         uuid.NewString(),
		Seq:        len(l.events) + 1,
		Entity:     entity,
		Activity:   activity,
		Agent:      agent,
		Timestamp:  now,
		Parameters: parameters,
	})
	return nil
}

// SetSource records the dataset citation.
func (l *Log) SetSource(source SourceInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLogClosed
	}
	l.source = &source
	return nil
}

// SetCurator records who performed the curation.
func (l *Log) SetCurator(curator Curator) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLogClosed
	}
	l.curator = &curator
	return nil
}

// CaptureEnvironment snapshots the runtime environment.
func (l *Log) CaptureEnvironment() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLogClosed
	}
	l.environment = &Environment{
		CapturedAt: time.Now(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
	}
	return nil
}

// AddQualityCheck records a quality gate outcome.
func (l *Log) AddQualityCheck(name string, passed bool, results map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLogClosed
	}
	l.checks = append(l.checks, QualityCheck{
		Name:      name,
		Timestamp: time.Now(),
		Passed:    passed,
		Results:   results,
	})
	return nil
}

// AddNote records a free-form annotation.
func (l *Log) AddNote(category, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLogClosed
	}
	l.notes = append(l.notes, Note{
		Timestamp: time.Now(),
		Category:  category,
		Text:      text,
	})
	return nil
}

// Events returns a copy of the recorded events in append order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Export finalizes the log and returns the lineage graph covering every
// recorded event. The log is closed afterwards.
func (l *Log) Export() (*Graph, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLogClosed
	}
	l.closed = true

	return buildGraph(l), nil
}
