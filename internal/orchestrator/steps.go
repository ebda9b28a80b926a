package orchestrator

// StepStatus is the display state of one processing step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepProcessing
	StepCompleted
	StepError
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepProcessing:
		return "processing"
	case StepCompleted:
		return "completed"
	case StepError:
		return "error"
	default:
		return "unknown"
	}
}

// Step is one row of the status display.
type Step struct {
	ID          string
	Name        string
	Description string
	Status      StepStatus
	// Progress within the step, 0..100.
	Progress int
}

type stepRange struct {
	id, name, description string
	start, end            int
}

// The four display steps split the overall 0..100 range.
var stepRanges = []stepRange{
	{"analysis", "Video Analysis", "Analyzing video structure and quality metrics", 0, 20},
	{"upscaling", "AI Upscaling", "Neural network enhancement to target resolution", 20, 60},
	{"enhancement", "Quality Enhancement", "Noise reduction, sharpening, and color correction", 60, 95},
	{"finalization", "Finalization", "Audio processing and final encoding", 95, 100},
}

// Steps derives the per-step display from the overall progress and the
// attempt state. In Failed, the step holding progress is marked as the
// error step.
func Steps(progress int, state State) []Step {
	progress = clamp(progress, 0, 100)
	steps := make([]Step, len(stepRanges))
	for i, r := range stepRanges {
		st := Step{ID: r.id, Name: r.name, Description: r.description}
		last := i == len(stepRanges)-1
		inside := progress >= r.start && (progress < r.end || last)

		switch {
		case state == Idle:
			st.Status = StepPending
		case state == Done:
			st.Status = StepCompleted
		case progress >= r.end && !last:
			st.Status = StepCompleted
		case inside && state == Failed:
			st.Status = StepError
		case inside:
			st.Status = StepProcessing
		default:
			st.Status = StepPending
		}

		switch st.Status {
		case StepCompleted:
			st.Progress = 100
		case StepProcessing, StepError:
			st.Progress = clamp((progress-r.start)*100/(r.end-r.start), 0, 100)
		}
		steps[i] = st
	}
	return steps
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
