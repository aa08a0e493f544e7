package speech

import (
	"context"
	"strconv"
)

// Baseline native units for the espeak family. A speed multiplier of 1.0
// maps to 175 words per minute; a pitch multiplier of 1.0 maps to espeak's
// default pitch value of 50 (range 0-99).
const (
	espeakBaseWPM   = 175
	espeakBasePitch = 50
	espeakAmplitude = "100"
	espeakVoice     = "en"
)

// espeakEngine drives espeak-ng or its predecessor espeak. Both share the
// same flag surface; only the binary name differs.
type espeakEngine struct {
	binary string
}

// NewESpeakNG returns the espeak-ng adapter, the preferred engine.
func NewESpeakNG() Engine {
	return &espeakEngine{binary: "espeak-ng"}
}

// NewESpeak returns the adapter for classic espeak.
func NewESpeak() Engine {
	return &espeakEngine{binary: "espeak"}
}

func (e *espeakEngine) Name() string {
	return e.binary
}

func (e *espeakEngine) Available() bool {
	return binaryAvailable(e.binary)
}

func (e *espeakEngine) Synthesize(ctx context.Context, text string, params VoiceParameters) ([]byte, error) {
	args := []string{
		"-v", espeakVoice,
		"-s", strconv.Itoa(int(params.Speed * espeakBaseWPM)),
		"-p", strconv.Itoa(int(params.Pitch * espeakBasePitch)),
		"-a", espeakAmplitude,
		"--stdout",
		text,
	}
	return runCommand(ctx, "", e.binary, args...)
}
