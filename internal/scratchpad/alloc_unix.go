//go:build linux || darwin

package scratchpad

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// handle is the mmap-backed region a pad was carved from; freeAligned needs
// it to know the true mapping bounds (mmap itself already returns
// page-aligned memory, so no over-allocation/rounding is needed here, unlike
// the portable fallback).
type handle struct {
	region []byte
}

func allocAligned(memBytes int) (handle, []byte) {
	region, err := unix.Mmap(-1, 0, memBytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic(fmt.Sprintf("scratchpad: mmap %d bytes failed: %v", memBytes, err))
	}
	return handle{region: region}, region
}

func freeAligned(h handle, _ []byte) {
	if err := unix.Munmap(h.region); err != nil {
		panic(fmt.Sprintf("scratchpad: munmap failed: %v", err))
	}
}
