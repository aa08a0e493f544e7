package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/voxbook/voxbook/internal/speech"
)

// Key computes the deterministic content address for one synthesized
// segment: a SHA-256 digest over the segment text and the voice parameters
// serialized in a fixed big-endian byte order, plus the engine name.
// Binding the engine keeps audio from one engine from being replayed after
// the environment switches to another.
func Key(text string, params speech.VoiceParameters, engine string) string {
	h := sha256.New()
	h.Write([]byte(text))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(params.Speed))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(params.Pitch))
	h.Write(buf[:])
	binary.BigEndian.PutUint32(buf[:4], uint32(params.SampleRate))
	h.Write(buf[:4])

	h.Write([]byte(engine))

	return hex.EncodeToString(h.Sum(nil))
}
