package hash

import (
	"bytes"
	"testing"
)

func makeInput(ways, blobLen int, nonceBase uint32) []byte {
	input := make([]byte, ways*blobLen)
	for w := 0; w < ways; w++ {
		off := w*blobLen + 39
		n := nonceBase + uint32(w)
		input[off] = byte(n)
		input[off+1] = byte(n >> 8)
		input[off+2] = byte(n >> 16)
		input[off+3] = byte(n >> 24)
	}
	return input
}

func makePads(ways, memBytes int) [][]byte {
	pads := make([][]byte, ways)
	for i := range pads {
		pads[i] = make([]byte, memBytes)
	}
	return pads
}

func TestDeterministic(t *testing.T) {
	fn := New("cryptonight", "cryptonight/1", true)
	const ways, blobLen, mem = 2, 76, 2*1024*1024

	input := makeInput(ways, blobLen, 0)
	out1 := make([]byte, ways*32)
	fn(input, blobLen, ways, out1, makePads(ways, mem))

	out2 := make([]byte, ways*32)
	fn(input, blobLen, ways, out2, makePads(ways, mem))

	if !bytes.Equal(out1, out2) {
		t.Fatal("hash function is not deterministic for identical input")
	}
}

func TestWaysAreIndependent(t *testing.T) {
	fn := New("cryptonight", "cryptonight/1", true)
	const blobLen, mem = 76, 2 * 1024 * 1024

	input := makeInput(2, blobLen, 0)
	out := make([]byte, 2*32)
	fn(input, blobLen, 2, out, makePads(2, mem))

	if bytes.Equal(out[0:32], out[32:64]) {
		t.Fatal("distinct nonces across ways produced identical hashes")
	}
}

func TestSoftAESDiffersFromHardAES(t *testing.T) {
	const blobLen, mem = 76, 2 * 1024 * 1024
	input := makeInput(1, blobLen, 7)

	soft := New("cryptonight", "cryptonight/1", true)
	hard := New("cryptonight", "cryptonight/1", false)

	outSoft := make([]byte, 32)
	soft(input, blobLen, 1, outSoft, makePads(1, mem))

	outHard := make([]byte, 32)
	hard(input, blobLen, 1, outHard, makePads(1, mem))

	if bytes.Equal(outSoft, outHard) {
		t.Fatal("soft_aes and hard AES paths produced the same hash")
	}
}

func TestVariantsDiverge(t *testing.T) {
	const blobLen, mem = 76, 2 * 1024 * 1024
	input := makeInput(1, blobLen, 3)

	v1 := New("cryptonight", "cryptonight/1", true)
	vXtl := New("cryptonight", "cryptonight/xtl", true)

	out1 := make([]byte, 32)
	v1(input, blobLen, 1, out1, makePads(1, mem))

	out2 := make([]byte, 32)
	vXtl(input, blobLen, 1, out2, makePads(1, mem))

	if bytes.Equal(out1, out2) {
		t.Fatal("different variants produced the same hash for the same input")
	}
}

func TestNonceChangesHash(t *testing.T) {
	const blobLen, mem = 76, 2 * 1024 * 1024
	fn := New("cryptonight", "cryptonight/1", true)

	a := makeInput(1, blobLen, 1)
	b := makeInput(1, blobLen, 2)

	outA := make([]byte, 32)
	fn(a, blobLen, 1, outA, makePads(1, mem))

	outB := make([]byte, 32)
	fn(b, blobLen, 1, outB, makePads(1, mem))

	if bytes.Equal(outA, outB) {
		t.Fatal("changing the nonce did not change the hash")
	}
}
