package model

import "testing"

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{StatusQueued, false},
		{StatusStarted, false},
		{StatusFinished, true},
		{StatusFailed, true},
		{" FINISHED ", true},
		{"deferred", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsTerminal(tc.status); got != tc.want {
			t.Fatalf("IsTerminal(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestStatusToneFallsBackForUnknownStatus(t *testing.T) {
	if got := StatusTone("scheduled"); got != ToneDefault {
		t.Fatalf("expected default tone for unknown status, got %v", got)
	}
	if IsKnownStatus("scheduled") {
		t.Fatal("expected scheduled to be unknown")
	}
	if got := StatusTone(StatusFailed); got != ToneFailure {
		t.Fatalf("expected failure tone, got %v", got)
	}
	if got := StatusTone("Started"); got != ToneActive {
		t.Fatalf("expected active tone for mixed-case status, got %v", got)
	}
}

func TestJobProgressOnlyWhileStarted(t *testing.T) {
	pct := 40
	job := Job{ID: "j1", Status: StatusStarted, Progress: &pct}
	if got, ok := job.ActiveProgress(); !ok || got != 40 {
		t.Fatalf("expected progress 40 while started, got %d (ok=%v)", got, ok)
	}

	job.Status = StatusFinished
	if _, ok := job.ActiveProgress(); ok {
		t.Fatal("expected no progress once finished")
	}

	zero := 0
	job = Job{ID: "j2", Status: StatusStarted, Progress: &zero}
	if _, ok := job.ActiveProgress(); ok {
		t.Fatal("expected zero progress to be hidden")
	}
}

func TestJobCreatedTimeAcceptsNaiveTimestamps(t *testing.T) {
	job := Job{CreatedAt: "2025-03-04T05:06:07.123456"}
	ts, ok := job.CreatedTime()
	if !ok {
		t.Fatal("expected naive timestamp to parse")
	}
	if ts.Year() != 2025 || ts.Hour() != 5 || ts.Location().String() != "UTC" {
		t.Fatalf("unexpected parsed time %v", ts)
	}

	job.CreatedAt = "2025-03-04T05:06:07+02:00"
	ts, ok = job.CreatedTime()
	if !ok || ts.UTC().Hour() != 3 {
		t.Fatalf("unexpected zoned time %v (ok=%v)", ts, ok)
	}

	job.CreatedAt = ""
	if _, ok := job.CreatedTime(); ok {
		t.Fatal("expected empty created_at to be unknown")
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("unexpected short id %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("unexpected short id %q", got)
	}
}
