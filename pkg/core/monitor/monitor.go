// Package monitor records per-operation success/failure/timing statistics
// used to evaluate extraction quality over time. It is purely observational:
// a missing or reset store never affects parsing correctness. The store is an
// explicit value with injected lifetime - construct one at process start and
// hand it to each pipeline invocation; tests get isolated stores for free.
package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"filingpipe/pkg/core/recovery"
)

// DefaultCapacity bounds the ring of retained operation records.
const DefaultCapacity = 1000

// OperationRecord is one parse/extract call. Records are append-only; past
// entries are never mutated.
type OperationRecord struct {
	ID         string            `json:"id"`
	ParserType string            `json:"parser_type"`
	Success    bool              `json:"success"`
	Duration   time.Duration     `json:"duration"`
	Category   recovery.Category `json:"category,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ParserMetrics is the per-parser-type aggregate.
type ParserMetrics struct {
	ParserType         string                      `json:"parser_type"`
	Attempts           int64                       `json:"attempts"`
	Successes          int64                       `json:"successes"`
	Failures           int64                       `json:"failures"`
	Retries            int64                       `json:"retries"`
	TotalDuration      time.Duration               `json:"total_duration"`
	AvgDuration        time.Duration               `json:"avg_duration"`
	FailuresByCategory map[recovery.Category]int64 `json:"failures_by_category,omitempty"`
}

// MetricsStore aggregates operation outcomes. Updates are append-only and
// associative, guarded by a single mutex so concurrent pipelines can share
// one store.
type MetricsStore struct {
	mu       sync.Mutex
	byParser map[string]*ParserMetrics
	ops      []OperationRecord // most-recent-first ring
	capacity int
	logger   *zap.Logger
}

// NewMetricsStore creates a store retaining at most capacity recent records.
// Zero or negative capacity uses DefaultCapacity.
func NewMetricsStore(capacity int, logger *zap.Logger) *MetricsStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsStore{
		byParser: make(map[string]*ParserMetrics),
		capacity: capacity,
		logger:   logger,
	}
}

// RecordOperation appends one call outcome.
func (s *MetricsStore) RecordOperation(parserType string, success bool, d time.Duration, cat recovery.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.metricsLocked(parserType)
	m.Attempts++
	m.TotalDuration += d
	m.AvgDuration = m.TotalDuration / time.Duration(m.Attempts)
	if success {
		m.Successes++
	} else {
		m.Failures++
		if cat != "" {
			if m.FailuresByCategory == nil {
				m.FailuresByCategory = make(map[recovery.Category]int64)
			}
			m.FailuresByCategory[cat]++
		}
	}

	rec := OperationRecord{
		ID:         uuid.NewString(),
		ParserType: parserType,
		Success:    success,
		Duration:   d,
		Category:   cat,
		Timestamp:  time.Now(),
	}
	s.ops = append([]OperationRecord{rec}, s.ops...)
	if len(s.ops) > s.capacity {
		s.ops = s.ops[:s.capacity]
	}
}

// RecordRetry counts one retry attempt for a parser type.
func (s *MetricsStore) RecordRetry(parserType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricsLocked(parserType).Retries++
}

func (s *MetricsStore) metricsLocked(parserType string) *ParserMetrics {
	m, ok := s.byParser[parserType]
	if !ok {
		m = &ParserMetrics{ParserType: parserType}
		s.byParser[parserType] = m
	}
	return m
}

// OpFilter selects operation records. Zero fields match everything.
type OpFilter struct {
	ParserType string
	Success    *bool
	Since      time.Time
	Until      time.Time
}

// Operations returns retained records matching the filter, most recent first.
func (s *MetricsStore) Operations(f OpFilter) []OperationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []OperationRecord
	for _, rec := range s.ops {
		if f.ParserType != "" && rec.ParserType != f.ParserType {
			continue
		}
		if f.Success != nil && rec.Success != *f.Success {
			continue
		}
		if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && rec.Timestamp.After(f.Until) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Report is the per-parser-type aggregate view handed to observability
// consumers. It is a serializable snapshot, not live state.
type Report struct {
	ParserType        string                      `json:"parser_type" yaml:"parser_type"`
	Attempts          int64                       `json:"attempts" yaml:"attempts"`
	Successes         int64                       `json:"successes" yaml:"successes"`
	Failures          int64                       `json:"failures" yaml:"failures"`
	Retries           int64                       `json:"retries" yaml:"retries"`
	SuccessRate       float64                     `json:"success_rate" yaml:"success_rate"`
	AvgDuration       time.Duration               `json:"avg_duration" yaml:"avg_duration"`
	ErrorDistribution map[recovery.Category]int64 `json:"error_distribution,omitempty" yaml:"error_distribution,omitempty"`
	RecentOperations  []OperationRecord           `json:"recent_operations,omitempty" yaml:"recent_operations,omitempty"`
}

// recentReportLimit caps the operations embedded in a report.
const recentReportLimit = 20

// ParserReport builds the aggregate report for one parser type.
func (s *MetricsStore) ParserReport(parserType string) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportLocked(parserType)
}

func (s *MetricsStore) reportLocked(parserType string) Report {
	m := s.metricsLocked(parserType)
	r := Report{
		ParserType:  parserType,
		Attempts:    m.Attempts,
		Successes:   m.Successes,
		Failures:    m.Failures,
		Retries:     m.Retries,
		AvgDuration: m.AvgDuration,
	}
	if m.Attempts > 0 {
		r.SuccessRate = float64(m.Successes) / float64(m.Attempts)
	}
	if len(m.FailuresByCategory) > 0 {
		r.ErrorDistribution = make(map[recovery.Category]int64, len(m.FailuresByCategory))
		for k, v := range m.FailuresByCategory {
			r.ErrorDistribution[k] = v
		}
	}
	for _, rec := range s.ops {
		if rec.ParserType != parserType {
			continue
		}
		r.RecentOperations = append(r.RecentOperations, rec)
		if len(r.RecentOperations) == recentReportLimit {
			break
		}
	}
	return r
}

// GlobalReport aggregates every tracked parser type.
type GlobalReport struct {
	Reports            []Report `json:"reports" yaml:"reports"`
	TotalAttempts      int64    `json:"total_attempts" yaml:"total_attempts"`
	OverallSuccessRate float64  `json:"overall_success_rate" yaml:"overall_success_rate"`
}

// Global builds the cross-parser report.
func (s *MetricsStore) Global() GlobalReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.byParser))
	for parserType := range s.byParser {
		types = append(types, parserType)
	}
	sort.Strings(types)

	var g GlobalReport
	var successes int64
	for _, parserType := range types {
		r := s.reportLocked(parserType)
		g.Reports = append(g.Reports, r)
		g.TotalAttempts += r.Attempts
		successes += r.Successes
	}
	if g.TotalAttempts > 0 {
		g.OverallSuccessRate = float64(successes) / float64(g.TotalAttempts)
	}
	return g
}

// Reset drops all aggregates and records.
func (s *MetricsStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byParser = make(map[string]*ParserMetrics)
	s.ops = nil
	s.logger.Debug("metrics store reset")
}
