package speech

import "context"

// festivalEngine drives the festival speech system in pipe mode, feeding
// text on stdin. Festival's pipe interface exposes no speed or pitch flags,
// so voice parameters are left at the engine's baseline; they still
// participate in cache keys so a later parameter change re-synthesizes.
type festivalEngine struct{}

// NewFestival returns the festival adapter, the last-resort engine.
func NewFestival() Engine {
	return &festivalEngine{}
}

func (f *festivalEngine) Name() string {
	return "festival"
}

func (f *festivalEngine) Available() bool {
	return binaryAvailable("festival")
}

func (f *festivalEngine) Synthesize(ctx context.Context, text string, _ VoiceParameters) ([]byte, error) {
	return runCommand(ctx, text, "festival", "--tts", "--pipe")
}
