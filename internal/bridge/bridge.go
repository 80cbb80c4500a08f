// Package bridge is the control-plane bridge between a host process and the
// mining engine: it owns the engine goroutine, the inbound/outbound queues,
// and the host-side drain loop that turns outbound messages into callback
// invocations.
package bridge

import (
	"fmt"

	"github.com/tos-network/cn-worker-core/internal/engine"
	"github.com/tos-network/cn-worker-core/internal/message"
	"github.com/tos-network/cn-worker-core/internal/mpsc"
	"github.com/tos-network/cn-worker-core/internal/registry"
)

// OnData is invoked once per outbound message, in order.
type OnData func(name string, values map[string]string)

// OnComplete is invoked exactly once, after the engine goroutine has exited
// and the outbound queue has been drained a final time.
type OnComplete func()

// OnError is invoked if the engine aborts with an unrecoverable error.
type OnError func(description string)

// Options configures a Bridge. The zero value is valid.
type Options struct{}

// Bridge is the host-facing handle. A Bridge must be created with Start and
// must eventually be closed with Close; it is safe to call Send and Close
// from any goroutine.
type Bridge struct {
	in  *mpsc.Queue
	out *mpsc.Queue
	reg *registry.Registry

	engineDone chan struct{}
	hostDone   chan struct{}

	onData     OnData
	onComplete OnComplete
	onError    OnError
}

// Start constructs the engine, spawns its goroutine, and spawns the
// host-side drain goroutine. onData/onComplete/onError are sinks for
// outbound messages. onData and onComplete are called from the host-side
// drain goroutine; onError is called from the engine goroutine itself, when
// it recovers a panic, before that goroutine exits.
func Start(onData OnData, onComplete OnComplete, onError OnError, _ Options) *Bridge {
	b := &Bridge{
		in:         mpsc.New(),
		out:        mpsc.New(),
		reg:        registry.New(),
		engineDone: make(chan struct{}),
		hostDone:   make(chan struct{}),
		onData:     onData,
		onComplete: onComplete,
		onError:    onError,
	}

	eng := engine.New(b.reg, b.in, b.out)

	go func() {
		defer close(b.engineDone)
		defer func() {
			if r := recover(); r != nil && b.onError != nil {
				b.onError(fmt.Sprintf("engine aborted: %v", r))
			}
		}()
		eng.Run()
	}()

	go b.hostDrain()

	return b
}

// hostDrain blocks on the outbound queue's notify signal and dispatches
// every buffered message to onData, until the engine goroutine exits; it
// then performs one final drain before calling onComplete.
func (b *Bridge) hostDrain() {
	defer close(b.hostDone)

	var buf []message.Message
	for {
		select {
		case <-b.out.Notify:
			buf = b.drainInto(buf)
		case <-b.engineDone:
			buf = b.drainInto(buf)
			if b.onComplete != nil {
				b.onComplete()
			}
			return
		}
	}
}

func (b *Bridge) drainInto(buf []message.Message) []message.Message {
	buf = b.out.Drain(buf[:0])
	for _, m := range buf {
		if b.onData != nil {
			b.onData(m.Name, m.Values)
		}
	}
	return buf
}

// Send enqueues a control message to the engine. Non-blocking, thread-safe,
// and never fails.
func (b *Bridge) Send(name string, values map[string]string) {
	if values == nil {
		values = map[string]string{}
	}
	b.in.Write(message.Message{Name: name, Values: values})
}

// SendJob is a typed convenience wrapper over Send for the job message.
func (b *Bridge) SendJob(algo string, softAES bool, ways int, blobHex, targetHex string) {
	soft := "0"
	if softAES {
		soft = "1"
	}
	b.Send(message.Job, map[string]string{
		"algo":     algo,
		"soft_aes": soft,
		"ways":     fmt.Sprintf("%d", ways),
		"blob_hex": blobHex,
		"target":   targetHex,
	})
}

// Close is equivalent to Send("close", {}).
func (b *Bridge) Close() {
	b.Send(message.Close, nil)
}

// Wait blocks until the host-side drain loop has finished (i.e. onComplete
// has been invoked). Intended for tests and for a host that wants a
// synchronous shutdown.
func (b *Bridge) Wait() {
	<-b.hostDone
}
