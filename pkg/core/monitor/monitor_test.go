package monitor

import (
	"testing"
	"time"

	"filingpipe/pkg/core/recovery"
)

func TestRecordOperation_Aggregates(t *testing.T) {
	s := NewMetricsStore(0, nil)

	s.RecordOperation("response", true, 10*time.Millisecond, "")
	s.RecordOperation("response", true, 20*time.Millisecond, "")
	s.RecordOperation("response", false, 30*time.Millisecond, recovery.CategoryExtraction)
	s.RecordOperation("response", false, 40*time.Millisecond, recovery.CategoryParsing)

	r := s.ParserReport("response")
	if r.Attempts != 4 || r.Successes != 2 || r.Failures != 2 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if r.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %f", r.SuccessRate)
	}
	if r.AvgDuration != 25*time.Millisecond {
		t.Errorf("expected avg 25ms, got %s", r.AvgDuration)
	}
	if r.ErrorDistribution[recovery.CategoryExtraction] != 1 {
		t.Errorf("unexpected error distribution: %v", r.ErrorDistribution)
	}
	if r.ErrorDistribution[recovery.CategoryParsing] != 1 {
		t.Errorf("unexpected error distribution: %v", r.ErrorDistribution)
	}
}

func TestRecordRetry(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordRetry("response")
	s.RecordRetry("response")

	if r := s.ParserReport("response"); r.Retries != 2 {
		t.Errorf("expected 2 retries, got %d", r.Retries)
	}
}

func TestOperations_MostRecentFirst(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordOperation("response", true, 1*time.Millisecond, "")
	s.RecordOperation("response", true, 2*time.Millisecond, "")
	s.RecordOperation("response", true, 3*time.Millisecond, "")

	ops := s.Operations(OpFilter{})
	if len(ops) != 3 {
		t.Fatalf("expected 3 records, got %d", len(ops))
	}
	if ops[0].Duration != 3*time.Millisecond || ops[2].Duration != 1*time.Millisecond {
		t.Errorf("expected most-recent-first ordering, got %v", ops)
	}
}

func TestOperations_CapacityBound(t *testing.T) {
	s := NewMetricsStore(3, nil)
	for i := 0; i < 5; i++ {
		s.RecordOperation("response", true, time.Duration(i+1)*time.Millisecond, "")
	}

	ops := s.Operations(OpFilter{})
	if len(ops) != 3 {
		t.Fatalf("expected 3 retained records, got %d", len(ops))
	}
	// The newest records survive trimming.
	if ops[0].Duration != 5*time.Millisecond || ops[2].Duration != 3*time.Millisecond {
		t.Errorf("expected the most recent records retained, got %v", ops)
	}

	// Aggregates still count everything.
	if r := s.ParserReport("response"); r.Attempts != 5 {
		t.Errorf("expected aggregates unaffected by the ring, got %d", r.Attempts)
	}
}

func TestOperations_Filters(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordOperation("response", true, time.Millisecond, "")
	s.RecordOperation("streaming", false, time.Millisecond, recovery.CategoryParsing)
	s.RecordOperation("response", false, time.Millisecond, recovery.CategoryExtraction)

	if ops := s.Operations(OpFilter{ParserType: "streaming"}); len(ops) != 1 {
		t.Errorf("expected 1 streaming record, got %d", len(ops))
	}

	failed := false
	if ops := s.Operations(OpFilter{Success: &failed}); len(ops) != 2 {
		t.Errorf("expected 2 failures, got %d", len(ops))
	}

	succeeded := true
	if ops := s.Operations(OpFilter{ParserType: "response", Success: &succeeded}); len(ops) != 1 {
		t.Errorf("expected 1 successful response record, got %d", len(ops))
	}

	if ops := s.Operations(OpFilter{Since: time.Now().Add(time.Hour)}); len(ops) != 0 {
		t.Errorf("expected no records in the future, got %d", len(ops))
	}
}

func TestParserReport_RecentOperationsLimit(t *testing.T) {
	s := NewMetricsStore(0, nil)
	for i := 0; i < recentReportLimit+10; i++ {
		s.RecordOperation("response", true, time.Millisecond, "")
	}

	r := s.ParserReport("response")
	if len(r.RecentOperations) != recentReportLimit {
		t.Errorf("expected %d recent operations, got %d", recentReportLimit, len(r.RecentOperations))
	}
}

func TestGlobal(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordOperation("streaming", true, time.Millisecond, "")
	s.RecordOperation("response", true, time.Millisecond, "")
	s.RecordOperation("response", false, time.Millisecond, recovery.CategoryParsing)

	g := s.Global()
	if g.TotalAttempts != 3 {
		t.Errorf("expected 3 total attempts, got %d", g.TotalAttempts)
	}
	if len(g.Reports) != 2 {
		t.Fatalf("expected 2 parser reports, got %d", len(g.Reports))
	}
	// Reports come back in sorted parser-type order.
	if g.Reports[0].ParserType != "response" || g.Reports[1].ParserType != "streaming" {
		t.Errorf("expected sorted reports, got %v", g.Reports)
	}
	want := 2.0 / 3.0
	if g.OverallSuccessRate != want {
		t.Errorf("expected overall success rate %f, got %f", want, g.OverallSuccessRate)
	}
}

func TestReset(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordOperation("response", true, time.Millisecond, "")
	s.Reset()

	if r := s.ParserReport("response"); r.Attempts != 0 {
		t.Errorf("expected empty aggregates after reset, got %+v", r)
	}
	if ops := s.Operations(OpFilter{}); len(ops) != 0 {
		t.Errorf("expected no records after reset, got %d", len(ops))
	}
}

func TestRecordOperation_UniqueIDs(t *testing.T) {
	s := NewMetricsStore(0, nil)
	s.RecordOperation("response", true, time.Millisecond, "")
	s.RecordOperation("response", true, time.Millisecond, "")

	ops := s.Operations(OpFilter{})
	if ops[0].ID == "" || ops[0].ID == ops[1].ID {
		t.Error("expected distinct non-empty record IDs")
	}
}
