package distmat

import (
	"encoding/binary"
	"hash"
	"math"
)

// writeString feeds s's bytes into h, prefixed with its length so that
// concatenation of adjacent fields can never collide across field boundaries.
func writeString(h hash.Hash64, s string) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	_, _ = h.Write(lenBuf[:])
	_, _ = h.Write([]byte(s))
}

// writeFloat feeds f's IEEE-754 bit pattern into h.
func writeFloat(h hash.Hash64, f float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	_, _ = h.Write(buf[:])
}
