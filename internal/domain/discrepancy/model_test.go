package discrepancy

import "testing"

func TestNewRecord_DeltaIsReferenceMinusComputed(t *testing.T) {
	t.Parallel()

	rec := NewRecord(ReferenceEntry{PlayerName: "Joo Min-kyu", Metric: MetricGoals, Value: 11}, 8, true, false)
	if rec.Delta != 3 {
		t.Fatalf("delta=%d, want 3", rec.Delta)
	}
	if rec.Passed() {
		t.Fatalf("nonzero delta must not pass")
	}
	if !rec.Exceeds(2) || rec.Exceeds(3) {
		t.Fatalf("unexpected tolerance check for delta %d", rec.Delta)
	}

	over := NewRecord(ReferenceEntry{Metric: MetricAssists, Value: 2}, 5, true, false)
	if over.Delta != -3 || !over.Exceeds(0) {
		t.Fatalf("unexpected negative delta handling: %+v", over)
	}
}

func TestParseMetric(t *testing.T) {
	t.Parallel()

	if m, ok := ParseMetric(" Goals "); !ok || m != MetricGoals {
		t.Fatalf("unexpected metric: %q %t", m, ok)
	}
	if _, ok := ParseMetric("saves"); ok {
		t.Fatalf("saves is not a reference metric")
	}
}

func TestForLeague(t *testing.T) {
	t.Parallel()

	refs := []ReferenceEntry{
		{PlayerName: "Joo Min-kyu", Metric: MetricGoals, Value: 11},
		{LeagueID: "4689", PlayerName: "Lee Seung-woo", Metric: MetricAssists, Value: 5},
		{LeagueID: "4822", PlayerName: "Yu Kang-hyun", Metric: MetricGoals, Value: 4},
	}

	got := ForLeague(refs, "4689")
	if len(got) != 2 || got[1].PlayerName != "Lee Seung-woo" {
		t.Fatalf("unexpected entries %+v", got)
	}
}
