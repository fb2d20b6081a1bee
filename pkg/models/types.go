package models

import (
	"sync"
	"time"
)

// RunStatus represents the status of an annealing run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusConverged RunStatus = "converged"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// StageRecord is the observation taken after one temperature stage
type StageRecord struct {
	Stage       int       `json:"stage"`
	Temperature float32   `json:"temperature"`
	Energy      float32   `json:"energy"`
	Accepted    int       `json:"accepted"`
	Rejected    int       `json:"rejected"`
	NaN         int       `json:"rejected_nan"`
	State       []float64 `json:"state,omitempty"`
}

// EnergySummary aggregates the per-stage energies of a run
type EnergySummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Refinement reports the local polish applied after annealing
type Refinement struct {
	Method      string    `json:"method"`
	Best        []float64 `json:"best"`
	Energy      float32   `json:"energy"`
	Evaluations int       `json:"evaluations"`
	Status      string    `json:"status"`
	Improved    bool      `json:"improved"`
}

// RunResult is the outcome of a run as emitted by the CLI
type RunResult struct {
	RunID     string         `json:"run_id"`
	Status    RunStatus      `json:"status"`
	Mode      string         `json:"mode"`
	Objective string         `json:"objective"`
	Seed      uint64         `json:"seed"`
	Best      []float64      `json:"best"`
	Energy    float32        `json:"energy"`
	Reason    string         `json:"reason,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Duration  time.Duration  `json:"duration"`
	Stages    []StageRecord  `json:"stages,omitempty"`
	BestStage *StageRecord   `json:"best_stage,omitempty"`
	Summary   *EnergySummary `json:"summary,omitempty"`
	Refined   *Refinement    `json:"refined,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// History collects stage records while a streamed run is in progress
type History struct {
	stages []StageRecord
	mu     sync.RWMutex
}

// Add appends a stage record (thread-safe)
func (h *History) Add(rec StageRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, rec)
}

// Stages returns a copy of all recorded stages (thread-safe)
func (h *History) Stages() []StageRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stages := make([]StageRecord, len(h.stages))
	copy(stages, h.stages)
	return stages
}

// Len returns the number of recorded stages (thread-safe)
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stages)
}

// Best returns the lowest-energy stage recorded so far. NaN energies never
// win. The second result is false when no stage has a comparable energy.
func (h *History) Best() (StageRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var best StageRecord
	found := false
	for _, rec := range h.stages {
		if rec.Energy != rec.Energy {
			continue
		}
		if !found || rec.Energy < best.Energy {
			best = rec
			found = true
		}
	}
	return best, found
}
