// Package engine implements the mining engine's compute loop: the state
// machine, nonce bookkeeping, and hash-rate telemetry.
package engine

import (
	"runtime"
	"strconv"
	"time"

	"github.com/tos-network/cn-worker-core/internal/message"
	"github.com/tos-network/cn-worker-core/internal/mpsc"
	"github.com/tos-network/cn-worker-core/internal/registry"
	"github.com/tos-network/cn-worker-core/internal/scratchpad"
	"github.com/tos-network/cn-worker-core/internal/util"
)

type state int

const (
	stateIdle state = iota
	stateMining
	stateClosing
)

// Engine owns the current job, nonce counter, and scratchpads, and drives
// the drain-then-hash main loop. It is not safe for concurrent use from
// more than one goroutine; Run is meant to be the only caller of its
// unexported methods.
type Engine struct {
	reg *registry.Registry
	in  *mpsc.Queue
	out *mpsc.Queue

	state state
	job   *activeJob
	pads  *scratchpad.Set
}

// activeJob is the Mining(...) state's payload.
type activeJob struct {
	algo    string
	family  string
	softAES bool
	ways    int
	blobLen int
	target  uint64
	fn      hashFunc

	input  []byte
	output []byte

	nonceNext uint32

	windowStart int64 // ms; 0 means unset
	hashCount   uint64
	roundIndex  uint64
}

// hashFunc matches hash.Func without importing the hash package directly,
// so registry.Registry (which already depends on hash) is the only thing
// that needs to know the concrete type.
type hashFunc = func(input []byte, blobLen, ways int, out []byte, pads [][]byte)

// New builds an Idle engine wired to the given inbound/outbound queues and
// algorithm registry.
func New(reg *registry.Registry, in, out *mpsc.Queue) *Engine {
	return &Engine{reg: reg, in: in, out: out, state: stateIdle}
}

// Run is the compute loop. It is intended to run on a goroutine pinned to
// its own OS thread for its entire life via runtime.LockOSThread, the
// Go-native rendering of the "dedicated OS thread" requirement; it
// returns only after a close message, having freed every scratchpad.
func (e *Engine) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var drained []message.Message
	for {
		drained = e.in.Drain(drained[:0])
		for _, m := range drained {
			e.apply(m)
		}

		if e.state == stateClosing {
			return
		}

		if e.state == stateIdle {
			time.Sleep(util.IdlePollMS * time.Millisecond)
			continue
		}

		e.round()
	}
}

func (e *Engine) apply(m message.Message) {
	if e.state == stateClosing {
		// Terminal: no further message has any effect.
		return
	}
	switch m.Name {
	case message.Close:
		e.state = stateClosing
		if e.pads != nil {
			e.pads.Free()
			e.pads = nil
		}
	case message.Pause:
		e.state = stateIdle
	case message.Job:
		e.applyJob(m)
	default:
		// unknown names are ignored silently
	}
}

func (e *Engine) applyJob(m message.Message) {
	algo, _ := m.Get("algo")
	softAESField, _ := m.Get("soft_aes")
	waysField, _ := m.Get("ways")
	blobHex, _ := m.Get("blob_hex")
	targetHex, _ := m.Get("target")

	softAES := softAESField == "1"

	ways, err := strconv.Atoi(waysField)
	if err != nil || ways < 1 || ways > util.MaxWays || !e.reg.Supported(algo) {
		e.emitError("Unsupported algo")
		return
	}
	fn, err := e.reg.Lookup(algo, ways, softAES)
	if err != nil {
		e.emitError("Unsupported algo")
		return
	}
	memBytes, _ := e.reg.MemBytes(algo)

	blob, err := util.DecodeBlob(blobHex)
	if err != nil {
		e.emitError(err.Error())
		return
	}

	target, err := util.ExpandTarget(targetHex)
	if err != nil {
		e.emitError(err.Error())
		return
	}

	// Every field validated before any state mutation: a malformed job
	// leaves the previous job (if any) running untouched.
	fam := family(algo)
	prevFamily := ""
	if e.job != nil {
		prevFamily = e.job.family
	}

	if !e.pads.Reusable(ways, memBytes) {
		if e.pads != nil {
			e.pads.Free()
		}
		e.pads = scratchpad.Alloc(ways, memBytes)
	}

	input := make([]byte, ways*len(blob))
	for w := 0; w < ways; w++ {
		copy(input[w*len(blob):(w+1)*len(blob)], blob)
		util.WriteNonce(input, w, len(blob), uint32(w))
	}

	j := &activeJob{
		algo:      algo,
		family:    fam,
		softAES:   softAES,
		ways:      ways,
		blobLen:   len(blob),
		target:    target,
		fn:        hashFunc(fn),
		input:     input,
		output:    make([]byte, ways*util.HashLen),
		nonceNext: uint32(ways),
	}
	familyChanged := fam != prevFamily
	if e.job != nil && !familyChanged {
		j.windowStart = e.job.windowStart
		j.hashCount = e.job.hashCount
	}
	e.job = j
	e.state = stateMining

	util.LogJobAccepted(algo, ways, softAES, len(blob), familyChanged)
}

func (e *Engine) round() {
	j := e.job

	if j.roundIndex&util.HashrateSampleMask == 0 {
		t := nowMS()
		if j.windowStart == 0 {
			j.windowStart = t
			j.hashCount = 0
		} else if t-j.windowStart > util.HashrateWindowMS {
			rate := float64(j.ways) * float64(j.hashCount) / float64(t-j.windowStart) * 1000.0
			e.out.Write(message.New(message.Hashrate, "hashrate", strconv.FormatFloat(rate, 'f', 2, 64)))
			util.LogHashrate(j.algo, rate)
			j.windowStart = t
			j.hashCount = 0
		}
	}
	j.roundIndex++

	j.fn(j.input, j.blobLen, j.ways, j.output, e.pads.Pads())

	for w := 0; w < j.ways; w++ {
		if util.CompareWord(j.output, w) < j.target {
			nonce := util.ReadNonce(j.input, w, j.blobLen)
			e.out.Write(message.New(message.Result, "nonce", strconv.FormatUint(uint64(nonce), 10)))
			util.LogShareFound(j.algo, nonce)
		}
	}

	base := j.nonceNext
	for w := 0; w < j.ways; w++ {
		util.WriteNonce(j.input, w, j.blobLen, base+uint32(w))
	}
	j.nonceNext = base + uint32(j.ways)

	j.hashCount++
}

func (e *Engine) emitError(msg string) {
	e.out.Write(message.New(message.Error, "message", msg))
	util.LogEngineError(msg)
}

// family maps an accepted algo spelling, short or long form, to its family
// name, so "cn/1" and "cryptonight/0" both give "cryptonight".
func family(algo string) string {
	f := algo
	for i := 0; i < len(algo); i++ {
		if algo[i] == '/' {
			f = algo[:i]
			break
		}
	}
	if len(f) >= 2 && f[:2] == "cn" {
		f = "cryptonight" + f[2:]
	}
	return f
}

func nowMS() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
