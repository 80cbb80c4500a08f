// Package hash implements the CryptoNight-family mixing function that backs
// every registry entry. It is deliberately treated as a black box by the
// engine: callers only rely on the (input, ways, scratchpads) -> output
// contract, never on the internal stages.
//
// The mixing pipeline (scratchpad init from a cryptographic seed, sequential
// passes, strided passes, XOR-fold finalize) is grounded on TOS Hash V3; it
// is generalized here across three memory-size families and a soft_aes
// toggle that picks between an AES-block mixing step and a pure-arithmetic
// substitute, so the registry can distinguish both code paths.
package hash

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Func is the hash-function handle contract: it consumes an
// input buffer holding `ways` back-to-back blobLen-byte blobs and a
// scratchpad per way, and fills a ways*32-byte output buffer. Pure w.r.t.
// input and scratchpads.
type Func func(input []byte, blobLen, ways int, out []byte, pads [][]byte)

const mixingRounds = 8
const memoryPasses = 4

var strides = [4]int{1, 64, 256, 1024}

// variantTweak perturbs the mixing constant per variant so that distinct
// algo identifiers (e.g. cryptonight/1 vs cryptonight/xtl) never collide on
// the same hash for the same input, mirroring the real CryptoNight variants'
// divergent final mixing step without reimplementing each one bit-for-bit.
var variantTweak = map[string]uint64{
	"cryptonight/0":         0x517cc1b727220a95,
	"cryptonight/1":         0x517cc1b727220a97,
	"cryptonight/xtl":       0x517cc1b727220aa1,
	"cryptonight/msr":       0x517cc1b727220aa3,
	"cryptonight/xao":       0x517cc1b727220aa5,
	"cryptonight/rto":       0x517cc1b727220aa7,
	"cryptonight-lite/0":    0x9e3779b97f4a7c15,
	"cryptonight-lite/1":    0x9e3779b97f4a7c17,
	"cryptonight-heavy/0":   0xff51afd7ed558ccd,
	"cryptonight-heavy/xhv": 0xff51afd7ed558ccf,
	"cryptonight-heavy/tube": 0xff51afd7ed558cd1,
}

// New builds a Func specialized for one (family, variant, soft_aes) triple.
// family selects the scratchpad size via the registry; variant selects the
// mixing constant; soft selects the mixing substep.
func New(family, variant string, soft bool) Func {
	tweak := variantTweak[variant]
	if tweak == 0 {
		tweak = 0x517cc1b727220a95
	}

	return func(input []byte, blobLen, ways int, out []byte, pads [][]byte) {
		for way := 0; way < ways; way++ {
			blob := input[way*blobLen : (way+1)*blobLen]
			pad := pads[way]
			words := scratchWords(pad)

			initScratch(blob, words, tweak)
			sequentialMix(words, tweak)
			stridedMix(words, tweak, soft)
			finalize(words, out[way*32:(way+1)*32])
			writeBack(pad, words)
		}
	}
}

// scratchWords reinterprets a scratchpad's byte slice as a slice of uint64
// words; pad's length is always a multiple of 8 (mem_bytes is
// algorithm-defined and always word-aligned).
func scratchWords(pad []byte) []uint64 {
	words := make([]uint64, len(pad)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(pad[i*8 : i*8+8])
	}
	return words
}

// writeBack persists the mixed scratchpad words back into the caller-owned
// pad buffer, so the memory really is working storage rather than a
// write-only formality (the next round's initScratch does not depend on it,
// matching the allocator's "no zeroing required" contract, but the bytes are
// genuinely live so tools inspecting the scratchpad see real state).
func writeBack(pad []byte, words []uint64) {
	for i, w := range words {
		binary.LittleEndian.PutUint64(pad[i*8:i*8+8], w)
	}
}

func initScratch(blob []byte, words []uint64, tweak uint64) {
	h := blake3.New()
	h.Write(blob)
	seed := h.Sum(nil)

	var state [4]uint64
	for i := 0; i < 4; i++ {
		state[i] = binary.LittleEndian.Uint64(seed[i*8 : i*8+8])
	}

	n := len(words)
	for i := 0; i < n; i++ {
		idx := i % 4
		state[idx] = mix(state[idx], state[(idx+1)%4], uint64(i), tweak)
		words[i] = state[idx]
	}
}

func sequentialMix(words []uint64, tweak uint64) {
	n := len(words)
	if n == 0 {
		return
	}
	for pass := 0; pass < memoryPasses; pass++ {
		if pass%2 == 0 {
			carry := words[n-1]
			for i := 0; i < n; i++ {
				prev := words[(i-1+n)%n]
				words[i] = mix(words[i], prev^carry, uint64(pass), tweak)
				carry = words[i]
			}
		} else {
			carry := words[0]
			for i := n - 1; i >= 0; i-- {
				next := words[(i+1)%n]
				words[i] = mix(words[i], next^carry, uint64(pass), tweak)
				carry = words[i]
			}
		}
	}
}

func stridedMix(words []uint64, tweak uint64, soft bool) {
	n := len(words)
	if n == 0 {
		return
	}
	for round := 0; round < mixingRounds; round++ {
		stride := strides[round%len(strides)]
		for i := 0; i < n; i++ {
			j := (i + stride) % n
			k := (i + stride*2) % n

			a, b, c := words[i], words[j], words[k]
			if soft {
				words[i] = mix(a, b^c, uint64(round), tweak)
			} else {
				words[i] = aesMix(a, b^c, uint64(round), tweak)
			}
		}
	}
}

// mix is the AES-free arithmetic mixing step; the strided pass uses it
// whenever soft_aes is true.
func mix(a, b, round, tweak uint64) uint64 {
	rot := uint(round*7) % 64
	x := a + b
	y := a ^ rotl(b, rot)
	z := x * tweak
	return z ^ rotr(y, rot/2)
}

// aesMix folds one full AES-128 block encryption into the mix, used whenever
// soft_aes is false (the "hardware AES" path in the original worker).
var aesMixKey = func() [16]byte {
	var k [16]byte
	binary.LittleEndian.PutUint64(k[0:8], 0x243f6a8885a308d3)
	binary.LittleEndian.PutUint64(k[8:16], 0x13198a2e03707344)
	return k
}()

func aesMix(a, b, round, tweak uint64) uint64 {
	block, err := aes.NewCipher(aesMixKey[:])
	if err != nil {
		// aes.NewCipher only fails on a bad key length; aesMixKey is fixed
		// at 16 bytes, so this is unreachable.
		return mix(a, b, round, tweak)
	}

	var in, out [16]byte
	binary.LittleEndian.PutUint64(in[0:8], a^round)
	binary.LittleEndian.PutUint64(in[8:16], b^tweak)
	block.Encrypt(out[:], in[:])

	lo := binary.LittleEndian.Uint64(out[0:8])
	hi := binary.LittleEndian.Uint64(out[8:16])
	return lo ^ rotr(hi, 17)
}

func finalize(words []uint64, out []byte) {
	var folded [4]uint64
	for i, w := range words {
		folded[i%4] ^= w
	}

	var buf [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], folded[i])
	}

	h := blake3.New()
	h.Write(buf[:])
	sum := h.Sum(nil)
	copy(out, sum[:32])
}

func rotl(x uint64, k uint) uint64 {
	k &= 63
	return (x << k) | (x >> (64 - k))
}

func rotr(x uint64, k uint) uint64 {
	k &= 63
	return (x >> k) | (x << (64 - k))
}
