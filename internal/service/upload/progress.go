// internal/service/upload/progress.go

package upload

import "math"

// Progress is a read-only snapshot of an upload run, recomputed after
// every completed step. The step total is fixed when the run starts and
// never changes, so the percentage is monotonically non-decreasing no
// matter what order files finish in.
type Progress struct {
	TotalSteps     int    `json:"total_steps"`
	CompletedSteps int    `json:"completed_steps"`
	CurrentLabel   string `json:"current_label"`
	Percentage     int    `json:"percentage"`
}

func snapshot(total int, completed int64, label string) Progress {
	return Progress{
		TotalSteps:     total,
		CompletedSteps: int(completed),
		CurrentLabel:   label,
		Percentage:     int(math.Round(100 * float64(completed) / float64(total))),
	}
}
