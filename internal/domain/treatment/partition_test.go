package treatment

import (
	"testing"
)

func boardRecords() []*PatientRecord {
	return []*PatientRecord{
		{ID: "1", Name: "João Silva", Location: "UTI-01", Drug: "Meropenem", Start: "2025-01-05", Status: StatusActive},
		{ID: "2", Name: "Maria Santos", Location: "UTI-02", Drug: "Ceftriaxona", Start: "2025-01-01", Status: ""},
		{ID: "3", Name: "Pedro Oliveira", Location: "Leito 104", Drug: "Vancomicina", Start: "2025-01-03", Status: StatusActive},
		{ID: "4", Name: "Ana Rodrigues", Location: "Leito 203", Drug: "Ciprofloxacino", Start: "2024-12-10", Status: StatusHistory, EndDate: "2025-01-05"},
		{ID: "5", Name: "Carlos Souza", Location: "UTI-03", Drug: "Meropenem", Start: "2024-12-20", Status: StatusHistory, EndDate: "2025-01-10"},
		{ID: "6", Name: "Rita Lima", Location: "Leito 110", Drug: "Amoxicilina", Start: "2024-12-01", Status: StatusHistory},
	}
}

func ids(records []*PatientRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertIDs(t *testing.T, got []*PatientRecord, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestPartition_ActiveTab(t *testing.T) {
	// Missing status counts as active; sorted ascending by start date.
	got := Partition(boardRecords(), TabActive, "")
	assertIDs(t, got, "2", "3", "1")
}

func TestPartition_HistoryTab(t *testing.T) {
	// Sorted descending by end date; missing end date sorts last.
	got := Partition(boardRecords(), TabHistory, "")
	assertIDs(t, got, "5", "4", "6")
}

func TestPartition_SearchIsCaseInsensitive(t *testing.T) {
	got := Partition(boardRecords(), TabActive, "vanco")
	assertIDs(t, got, "3")

	got = Partition(boardRecords(), TabActive, "VANCO")
	assertIDs(t, got, "3")
}

func TestPartition_SearchMatchesAnyField(t *testing.T) {
	// name
	got := Partition(boardRecords(), TabActive, "maria")
	assertIDs(t, got, "2")

	// location
	got = Partition(boardRecords(), TabActive, "uti-01")
	assertIDs(t, got, "1")

	// drug
	got = Partition(boardRecords(), TabHistory, "meropenem")
	assertIDs(t, got, "5")
}

func TestPartition_SearchKeepsSurroundingWhitespace(t *testing.T) {
	// The term is matched verbatim apart from case folding, so padding
	// changes the result.
	got := Partition(boardRecords(), TabActive, " uti ")
	if len(got) != 0 {
		t.Errorf("expected no matches for padded term, got %v", ids(got))
	}

	got = Partition(boardRecords(), TabActive, "uti")
	if len(got) != 2 {
		t.Errorf("expected 2 matches for bare term, got %v", ids(got))
	}
}

func TestPartition_EmptySearchMatchesAll(t *testing.T) {
	records := boardRecords()
	got := Partition(records, TabActive, "")
	if len(got) != 3 {
		t.Errorf("expected all 3 active records, got %d", len(got))
	}
}

func TestPartition_NoResultsIsValid(t *testing.T) {
	got := Partition(boardRecords(), TabActive, "no such patient")
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestPartition_DoesNotMutateInput(t *testing.T) {
	records := boardRecords()
	before := ids(records)

	Partition(records, TabActive, "")
	Partition(records, TabHistory, "")

	after := ids(records)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input order changed: %v -> %v", before, after)
		}
	}
}

func TestPartition_Idempotent(t *testing.T) {
	first := Partition(boardRecords(), TabActive, "uti")
	second := Partition(first, TabActive, "uti")

	assertIDs(t, second, ids(first)...)
}

func TestParseTab(t *testing.T) {
	if ParseTab("history") != TabHistory {
		t.Error("expected history tab")
	}
	if ParseTab("active") != TabActive {
		t.Error("expected active tab")
	}
	if ParseTab("") != TabActive {
		t.Error("expected default to active tab")
	}
	if ParseTab("garbage") != TabActive {
		t.Error("expected unknown value to default to active tab")
	}
}
