package bridge

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartSmokeClose(t *testing.T) {
	var completed int32
	b := Start(
		func(name string, values map[string]string) { t.Errorf("unexpected outbound message: %s %v", name, values) },
		func() { atomic.StoreInt32(&completed, 1) },
		func(desc string) { t.Errorf("unexpected engine error: %s", desc) },
		Options{},
	)

	b.Close()
	b.Wait()

	if atomic.LoadInt32(&completed) != 1 {
		t.Fatal("onComplete was not called")
	}
}

func TestStartRejectsBadAlgo(t *testing.T) {
	var mu sync.Mutex
	var names []string

	b := Start(
		func(name string, values map[string]string) {
			mu.Lock()
			names = append(names, name)
			mu.Unlock()
		},
		func() {},
		nil,
		Options{},
	)

	b.SendJob("not-a-real-algo", true, 1, strings.Repeat("00", 76), "ffffffff")
	time.Sleep(200 * time.Millisecond)
	b.Close()
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(names) == 0 || names[0] != "error" {
		t.Fatalf("expected an error message first, got %v", names)
	}
}

func TestStartMiningProducesResults(t *testing.T) {
	var mu sync.Mutex
	results := 0

	b := Start(
		func(name string, values map[string]string) {
			if name == "result" {
				mu.Lock()
				results++
				mu.Unlock()
			}
		},
		func() {},
		nil,
		Options{},
	)

	b.SendJob("cn/1", true, 1, strings.Repeat("00", 76), "ffffffff")
	time.Sleep(300 * time.Millisecond)
	b.Close()
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if results == 0 {
		t.Fatal("expected at least one result with an easy target")
	}
}
