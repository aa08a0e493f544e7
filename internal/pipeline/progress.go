package pipeline

import (
	"sync/atomic"
	"time"
)

// Stage identifies where a run currently is in its lifecycle.
type Stage int

// Run stages, in order of occurrence.
const (
	StageIdle Stage = iota
	StageExtracting
	StageSynthesizing
	StageWriting
	StageCompleted
	StageFailed
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageExtracting:
		return "extracting"
	case StageSynthesizing:
		return "synthesizing"
	case StageWriting:
		return "writing"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent is one best-effort progress observation. Intermediate
// events may be coalesced or dropped; the events channel closing is the
// reliable terminal signal.
type ProgressEvent struct {
	Stage         Stage
	Message       string
	ChaptersDone  int
	ChaptersTotal int
	// ETA is the estimated remaining time, zero when unknown.
	ETA time.Duration
}

// progressReporter fans events out to the consumer without ever blocking a
// worker. Sends are non-blocking; a full buffer simply drops the event.
type progressReporter struct {
	ch    chan ProgressEvent
	start time.Time
	total atomic.Int64
	done  atomic.Int64
}

func newProgressReporter(buffer int) *progressReporter {
	return &progressReporter{
		ch:    make(chan ProgressEvent, buffer),
		start: time.Now(),
	}
}

// events returns the consumer side of the channel.
func (r *progressReporter) events() <-chan ProgressEvent {
	return r.ch
}

// setTotal records the chapter count once extraction has finished.
func (r *progressReporter) setTotal(total int) {
	r.total.Store(int64(total))
}

// emit delivers an event if the consumer has room, and drops it otherwise.
func (r *progressReporter) emit(ev ProgressEvent) {
	select {
	case r.ch <- ev:
	default:
	}
}

// stage emits a bare stage transition.
func (r *progressReporter) stage(s Stage, msg string) {
	r.emit(ProgressEvent{
		Stage:         s,
		Message:       msg,
		ChaptersDone:  int(r.done.Load()),
		ChaptersTotal: int(r.total.Load()),
	})
}

// chapterDone bumps the completion counter and emits an event with an ETA
// extrapolated from the average per-chapter time so far.
func (r *progressReporter) chapterDone(title string) {
	done := r.done.Add(1)
	total := r.total.Load()

	var eta time.Duration
	if done > 0 && total > done {
		perChapter := time.Since(r.start) / time.Duration(done)
		eta = perChapter * time.Duration(total-done)
	}

	r.emit(ProgressEvent{
		Stage:         StageSynthesizing,
		Message:       title,
		ChaptersDone:  int(done),
		ChaptersTotal: int(total),
		ETA:           eta,
	})
}

// close ends the stream. The terminal stage event must already have been
// emitted; closing is what a consumer may rely on.
func (r *progressReporter) close() {
	close(r.ch)
}
