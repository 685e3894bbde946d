package service

import "time"

// The submission progress schedule. After a quote is submitted the
// customer-facing flow walks through review, pricing check and
// verification screens on a fixed timetable before landing on the quote
// view. The schedule is purely informational: it never advances the
// quote's own status, it only tells the client which screen to show and
// when the next one unlocks. Clients may always skip ahead via NextPath.
const (
	StageReview       = "review"
	StagePricing      = "pricing"
	StageVerification = "verification"
	StageView         = "view"
)

// stageStep is one entry of the fixed timetable. The path names the
// screen that unlocks when the stage's window ends.
type stageStep struct {
	name     string
	duration time.Duration
	path     string
}

var progressSchedule = []stageStep{
	{StageReview, 60 * time.Second, "/quotes/%d/progress/pricing"},
	{StagePricing, 90 * time.Second, "/quotes/%d/progress/verification"},
	{StageVerification, 120 * time.Second, "/quotes/%d"},
}

// Progress describes where a submitted quote sits on the timetable.
type Progress struct {
	Stage     string     `json:"stage"`
	Percent   int        `json:"percent"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	NextPath  string     `json:"next_path"`
	ElapsedMS int64      `json:"elapsed_ms"`
}

// totalDuration is the full length of the timetable.
func totalDuration() time.Duration {
	var d time.Duration
	for _, s := range progressSchedule {
		d += s.duration
	}
	return d
}

// ProgressAt computes the stage for a quote submitted at submittedAt as
// of now. The computation is stateless: no timers run server-side and
// nothing is stored, so a poll after a crash or from a second device
// lands on the same answer.
func ProgressAt(submittedAt, now time.Time) Progress {
	elapsed := now.Sub(submittedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	total := totalDuration()

	percent := 100
	if elapsed < total {
		percent = int(elapsed * 100 / total)
	}

	boundary := submittedAt
	for _, s := range progressSchedule {
		boundary = boundary.Add(s.duration)
		if now.Before(boundary) {
			deadline := boundary
			return Progress{
				Stage:     s.name,
				Percent:   percent,
				Deadline:  &deadline,
				NextPath:  s.path,
				ElapsedMS: elapsed.Milliseconds(),
			}
		}
	}
	// Past the last boundary: the timetable is done, land on the view.
	return Progress{
		Stage:     StageView,
		Percent:   100,
		NextPath:  "/quotes/%d",
		ElapsedMS: elapsed.Milliseconds(),
	}
}
