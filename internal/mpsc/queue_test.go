package mpsc

import (
	"testing"
	"time"

	"github.com/tos-network/cn-worker-core/internal/message"
)

func TestWriteReadFIFO(t *testing.T) {
	q := New()
	q.Write(message.New("a"))
	q.Write(message.New("b"))
	q.Write(message.New("c"))

	if got := q.Read(); got.Name != "a" {
		t.Fatalf("expected a, got %s", got.Name)
	}
	if got := q.Read(); got.Name != "b" {
		t.Fatalf("expected b, got %s", got.Name)
	}
	if got := q.Read(); got.Name != "c" {
		t.Fatalf("expected c, got %s", got.Name)
	}
}

func TestReadBlocksUntilWrite(t *testing.T) {
	q := New()
	done := make(chan message.Message, 1)
	go func() { done <- q.Read() }()

	select {
	case <-done:
		t.Fatal("Read returned before any Write")
	case <-time.After(50 * time.Millisecond):
	}

	q.Write(message.New("x"))

	select {
	case m := <-done:
		if m.Name != "x" {
			t.Fatalf("expected x, got %s", m.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after Write")
	}
}

func TestDrainIsAtomicAndNonBlocking(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Write(message.New("m"))
	}

	out := q.Drain(nil)
	if len(out) != 5 {
		t.Fatalf("expected 5 drained messages, got %d", len(out))
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got len=%d", q.Len())
	}
}

func TestNotifyFiresOnWrite(t *testing.T) {
	q := New()
	q.Write(message.New("a"))

	select {
	case <-q.Notify:
	default:
		t.Fatal("expected Notify to be signaled after Write")
	}
}
