package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageString(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected string
	}{
		{StageIdle, "idle"},
		{StageExtracting, "extracting"},
		{StageSynthesizing, "synthesizing"},
		{StageWriting, "writing"},
		{StageCompleted, "completed"},
		{StageFailed, "failed"},
		{Stage(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.stage.String())
	}
}

func TestReporterNeverBlocks(t *testing.T) {
	r := newProgressReporter(2)
	r.setTotal(10)

	// Nothing consumes; sends beyond the buffer must be dropped, not block.
	for i := 0; i < 20; i++ {
		r.chapterDone("chapter")
	}
	r.stage(StageCompleted, "done")
	r.close()

	var events []ProgressEvent
	for ev := range r.events() {
		events = append(events, ev)
	}
	assert.Len(t, events, 2)
}

func TestReporterChapterDoneCounts(t *testing.T) {
	r := newProgressReporter(8)
	r.start = time.Now().Add(-time.Second)
	r.setTotal(3)

	r.chapterDone("one")
	r.chapterDone("two")
	r.close()

	var events []ProgressEvent
	for ev := range r.events() {
		events = append(events, ev)
	}
	require.Len(t, events, 2)

	assert.Equal(t, 1, events[0].ChaptersDone)
	assert.Equal(t, 2, events[1].ChaptersDone)
	assert.Equal(t, 3, events[1].ChaptersTotal)
	assert.Equal(t, "two", events[1].Message)
	// Two of three done: remaining time is estimable.
	assert.NotZero(t, events[1].ETA)
}

func TestReporterNoETAOnLastChapter(t *testing.T) {
	r := newProgressReporter(8)
	r.setTotal(1)

	r.chapterDone("only")
	r.close()

	ev := <-r.events()
	assert.Zero(t, ev.ETA)
}
