package service

import (
	"testing"
	"time"
)

var submitted = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func progressAfter(d time.Duration) Progress {
	return ProgressAt(submitted, submitted.Add(d))
}

func TestProgressStages(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		stage   string
	}{
		{0, StageReview},
		{30 * time.Second, StageReview},
		{59 * time.Second, StageReview},
		{60 * time.Second, StagePricing},
		{149 * time.Second, StagePricing},
		{150 * time.Second, StageVerification},
		{269 * time.Second, StageVerification},
		// the last boundary ends the timetable: the client lands on the view
		{270 * time.Second, StageView},
		{1 * time.Hour, StageView},
	}
	for _, c := range cases {
		if got := progressAfter(c.elapsed); got.Stage != c.stage {
			t.Errorf("ProgressAt(+%v).Stage = %q, want %q", c.elapsed, got.Stage, c.stage)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	if got := progressAfter(0); got.Percent != 0 {
		t.Errorf("percent at 0s = %d, want 0", got.Percent)
	}
	if got := progressAfter(135 * time.Second); got.Percent != 50 {
		t.Errorf("percent at 135s = %d, want 50", got.Percent)
	}
	if got := progressAfter(10 * time.Minute); got.Percent != 100 {
		t.Errorf("percent past the end = %d, want 100", got.Percent)
	}
}

func TestProgressDeadlines(t *testing.T) {
	got := progressAfter(10 * time.Second)
	if got.Deadline == nil || !got.Deadline.Equal(submitted.Add(60*time.Second)) {
		t.Errorf("review deadline = %v, want %v", got.Deadline, submitted.Add(60*time.Second))
	}
	got = progressAfter(200 * time.Second)
	if got.Deadline == nil || !got.Deadline.Equal(submitted.Add(270*time.Second)) {
		t.Errorf("verification deadline = %v, want %v", got.Deadline, submitted.Add(270*time.Second))
	}
	if got = progressAfter(300 * time.Second); got.Deadline != nil {
		t.Errorf("finished timetable should have no deadline, got %v", got.Deadline)
	}
}

func TestProgressNextPath(t *testing.T) {
	if got := progressAfter(10 * time.Second); got.NextPath != "/quotes/%d/progress/pricing" {
		t.Errorf("next path during review = %q", got.NextPath)
	}
	if got := progressAfter(200 * time.Second); got.NextPath != "/quotes/%d" {
		t.Errorf("next path during verification = %q", got.NextPath)
	}
	if got := progressAfter(5 * time.Minute); got.NextPath != "/quotes/%d" {
		t.Errorf("next path after the timetable = %q", got.NextPath)
	}
}

// Clock skew: a poll that arrives before submitted_at must clamp to the
// start of the timetable rather than report a negative position.
func TestProgressBeforeSubmission(t *testing.T) {
	got := ProgressAt(submitted, submitted.Add(-5*time.Second))
	if got.Stage != StageReview || got.Percent != 0 || got.ElapsedMS != 0 {
		t.Errorf("pre-submission poll = %+v", got)
	}
}
