package pipeline

// Stage enumerates the progress states of a generation attempt.
type Stage int

const (
	StageIdle Stage = iota
	StageChecking
	StageExtracting
	StageGenerating
	StagePlacing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageChecking:
		return "checking"
	case StageExtracting:
		return "extracting"
	case StageGenerating:
		return "generating"
	case StagePlacing:
		return "placing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether the stage belongs to a running attempt.
func (s Stage) Busy() bool { return s >= StageChecking && s <= StagePlacing }

// StageListener is called on each stage transition, on the generating goroutine.
type StageListener func(prev, next Stage)
