package export

// Stage tags one phase of an export session.
type Stage string

const (
	StageLaunch      Stage = "launch"
	StageLoad        Stage = "load"
	StageRecording   Stage = "recording"
	StagePostProcess Stage = "post-processing"
	StageDone        Stage = "done"
)

// Progress is a point-in-time snapshot of the export, pushed to the observer
// at every stage transition. Percent never decreases across one session, and
// the stream always ends with StageDone regardless of outcome.
type Progress struct {
	Stage      Stage
	ClipIndex  int
	TotalClips int
	Percent    int
	Message    string
}

// progressEmitter enforces monotonic percentages over an optional observer.
type progressEmitter struct {
	observer func(Progress)
	last     int
}

func (e *progressEmitter) emit(p Progress) {
	if p.Percent < e.last {
		p.Percent = e.last
	}
	e.last = p.Percent
	if e.observer != nil {
		e.observer(p)
	}
}

// recordingPercent spreads the recording budget (20–80%) across the clips.
func recordingPercent(clipIndex, totalClips int) int {
	if totalClips <= 0 {
		return 20
	}
	return 20 + 60*clipIndex/totalClips
}
