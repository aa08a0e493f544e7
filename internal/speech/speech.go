// Package speech abstracts over interchangeable external text-to-speech
// engines. Engines are probed in a fixed preference order and the first one
// found on the execution path is used for the whole run.
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Common errors for the speech subsystem.
var (
	// ErrNoEngine indicates that none of the known TTS engines is
	// installed. This is fatal for a conversion run.
	ErrNoEngine = errors.New("no speech engine found, install espeak-ng, espeak, or festival")

	// ErrEmptyText indicates a synthesis request with nothing to speak.
	ErrEmptyText = errors.New("empty text provided for synthesis")
)

// VoiceParameters shape the acoustic output of a synthesis call. They are
// immutable for the duration of a run and are part of every cache key.
type VoiceParameters struct {
	// Speed is a multiplier around the engine's baseline speaking rate
	// (1.0 = normal, nominal range 0.5-2.0).
	Speed float64

	// Pitch is a multiplier around the engine's baseline pitch
	// (1.0 = normal, nominal range 0.5-2.0).
	Pitch float64

	// SampleRate is the requested output sample rate in Hz.
	SampleRate int
}

// Engine is one external TTS tool. Implementations map VoiceParameters into
// the engine's native units and invoke it as a subprocess, capturing WAV
// bytes from its standard output.
type Engine interface {
	// Name returns the engine's binary name, e.g. "espeak-ng".
	Name() string

	// Available reports whether the engine can be invoked in the current
	// environment. It must be cheap; callers may probe repeatedly.
	Available() bool

	// Synthesize renders text to WAV bytes. A non-zero subprocess exit is
	// returned as an error; the caller decides whether that aborts the run.
	Synthesize(ctx context.Context, text string, params VoiceParameters) ([]byte, error)
}

// DefaultEngines returns the known engines in preference order, most
// capable first.
func DefaultEngines() []Engine {
	return []Engine{NewESpeakNG(), NewESpeak(), NewFestival()}
}

// Resolve selects the first available engine from the given ranked list.
// Selection happens once per run; callers hold on to the result instead of
// re-probing per segment.
func Resolve(engines []Engine) (Engine, error) {
	for _, e := range engines {
		if e.Available() {
			log.Debug("speech engine selected", "engine", e.Name())
			return e, nil
		}
		log.Debug("speech engine not available", "engine", e.Name())
	}
	return nil, ErrNoEngine
}

// Synthesizer binds a resolved engine to fixed voice parameters for the
// lifetime of a run.
type Synthesizer struct {
	engine Engine
	params VoiceParameters
}

// NewSynthesizer resolves an engine from the ranked list and returns a
// synthesizer bound to it. Returns ErrNoEngine when nothing is installed.
func NewSynthesizer(params VoiceParameters, engines []Engine) (*Synthesizer, error) {
	engine, err := Resolve(engines)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{engine: engine, params: params}, nil
}

// EngineName returns the name of the engine selected for this run.
func (s *Synthesizer) EngineName() string {
	return s.engine.Name()
}

// Params returns the voice parameters this synthesizer was built with.
func (s *Synthesizer) Params() VoiceParameters {
	return s.params
}

// Synthesize renders one text segment with the run's engine and parameters.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	audio, err := s.engine.Synthesize(ctx, text, s.params)
	if err != nil {
		return nil, fmt.Errorf("%s synthesis: %w", s.engine.Name(), err)
	}
	return audio, nil
}
