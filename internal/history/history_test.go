// ABOUTME: Tests for the SQLite scan history store.
// ABOUTME: Uses a temp database file per test.

package history

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "scans.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(riskScore int) *types.AuditResult {
	result := types.NewAuditResult(types.Python, 42)
	result.RiskScore = riskScore
	result.Stats.TotalFindings = 2
	return result
}

func sampleAssessment() *assess.Assessment {
	return &assess.Assessment{
		Classification:   types.ProtectedB,
		InverseRiskScore: 15,
		PenaltyScore:     40,
	}
}

func TestRecordAfterCloseMentionsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	_, err = store.Record("/src/app", sampleResult(10), sampleAssessment())
	if err == nil {
		t.Fatal("expected error on closed store")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the database file: %v", err)
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Record("/src/app", sampleResult(85), sampleAssessment())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero row id")
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	e := entries[0]
	if e.Target != "/src/app" {
		t.Errorf("Target = %q", e.Target)
	}
	if e.Language != "python" {
		t.Errorf("Language = %q, want python", e.Language)
	}
	if e.RiskScore != 85 || e.Compliance != 15 || e.Penalty != 40 {
		t.Errorf("scores = %d/%d/%d, want 85/15/40", e.RiskScore, e.Compliance, e.Penalty)
	}
	if e.Classification != "Protected B" {
		t.Errorf("Classification = %q, want Protected B", e.Classification)
	}
	if e.ScannedAt.IsZero() {
		t.Error("ScannedAt not set")
	}
}

func TestListLimitAndOrder(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.Record("/src/app", sampleResult(10*i), sampleAssessment()); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	entries, err := store.List(3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Newest first: the last insert carried risk score 40.
	if entries[0].RiskScore != 40 {
		t.Errorf("entries[0].RiskScore = %d, want 40", entries[0].RiskScore)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].ID <= entries[i].ID {
			t.Errorf("entries not newest-first: id %d before %d", entries[i-1].ID, entries[i].ID)
		}
	}
}

func TestForTarget(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Record("/src/a", sampleResult(50), sampleAssessment()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := store.Record("/src/b", sampleResult(60), sampleAssessment()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := store.Record("/src/a", sampleResult(70), sampleAssessment()); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.ForTarget("/src/a")
	if err != nil {
		t.Fatalf("ForTarget: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Target != "/src/a" {
			t.Errorf("unexpected target %q", e.Target)
		}
	}
	if entries[0].RiskScore != 70 {
		t.Errorf("entries[0].RiskScore = %d, want 70", entries[0].RiskScore)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record("/src/app", sampleResult(30), sampleAssessment()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) after reopen = %d, want 1", len(entries))
	}
}
