// Package engine provides a reproducible randomness source for bootstrapping
// boards. Bytes come from HMAC-SHA256 keyed by a server seed over
// "client_seed:nonce:round", so the same triple yields the same board on any
// machine.
package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/MJE43/life-tick-go/internal/life"
)

// Seeds identifies a deterministic board.
type Seeds struct {
	Server string `json:"server_seed"`
	Client string `json:"client_seed"`
}

// ByteGenerator streams HMAC-SHA256 output 32 bytes per round.
type ByteGenerator struct {
	seeds        Seeds
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a generator positioned at the start of round 0.
func NewByteGenerator(seeds Seeds, nonce uint64) *ByteGenerator {
	bg := &ByteGenerator{
		seeds: seeds,
		nonce: nonce,
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte of the stream.
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= len(bg.buffer) {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// Int63 consumes 8 bytes and returns them as a non-negative int64.
// It lets a ByteGenerator act as a life.Source.
func (bg *ByteGenerator) Int63() int64 {
	var b [8]byte
	for i := range b {
		b[i] = bg.Next()
	}
	return int64(binary.BigEndian.Uint64(b[:]) >> 1)
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.seeds.Server))
	fmt.Fprintf(h, "%s:%d:%d", bg.seeds.Client, bg.nonce, bg.currentRound)
	copy(bg.buffer[:], h.Sum(nil))
}

// Board returns the size×size random board for the given seeds and nonce.
func Board(seeds Seeds, nonce uint64, size int) life.Grid {
	return life.RandomGrid(size, size, NewByteGenerator(seeds, nonce))
}
