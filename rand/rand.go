// rand/rand.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package rand wraps a PCG32 generator so that everything stochastic in the
// simulation (sample traffic, spawn placement, session ids) runs off a
// seedable stream and is reproducible.
package rand

import (
	"encoding/binary"

	"github.com/MichaelTJones/pcg"
)

type Rand struct {
	r *pcg.PCG32
}

func New() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// Make returns a seeded generator ready for use.
func Make(seed int64) *Rand {
	r := New()
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Int31n(n int32) int32 {
	return int32(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Read fills p with random bytes; having Rand implement io.Reader lets it
// drive uuid.NewRandomFromReader and friends deterministically.
func (r *Rand) Read(p []byte) (int, error) {
	var buf [4]byte
	for i := 0; i < len(p); i += 4 {
		binary.LittleEndian.PutUint32(buf[:], r.r.Random())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}

// PermutationElement returns the ith element of a random permutation of the
// set of integers [0...,n-1].
// i/n, p is hash, via Andrew Kensler
func PermutationElement(i int, n int, p uint32) int {
	ui, l := uint32(i), uint32(n)
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		ui ^= p
		ui *= 0xe170893d
		ui ^= p >> 16
		ui ^= (ui & w) >> 4
		ui ^= p >> 8
		ui *= 0x0929eb3f
		ui ^= p >> 23
		ui ^= (ui & w) >> 1
		ui *= 1 | p>>27
		ui *= 0x6935fa69
		ui ^= (ui & w) >> 11
		ui *= 0x74dcb303
		ui ^= (ui & w) >> 2
		ui *= 0x9e501cc3
		ui ^= (ui & w) >> 2
		ui *= 0xc860a3df
		ui &= w
		ui ^= ui >> 5
		if ui < l {
			break
		}
	}
	return int((ui + p) % l)
}
