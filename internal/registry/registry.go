// Package registry is the static (algo, ways, soft_aes) -> hash-function
// lookup table, plus the algo -> scratchpad size table.
package registry

import (
	"fmt"

	"github.com/tos-network/cn-worker-core/internal/hash"
)

// Scratchpad sizes per family.
const (
	CNMem      = 2 * 1024 * 1024
	CNLiteMem  = 1 * 1024 * 1024
	CNHeavyMem = 4 * 1024 * 1024
)

// Key identifies one registry row.
type Key struct {
	Algo    string
	Ways    int
	SoftAES bool
}

// Registry is the immutable lookup built once before the engine starts.
type Registry struct {
	funcs    map[Key]hash.Func
	memBytes map[string]int
}

// aliases maps every accepted spelling of an algo identifier to its
// canonical family+variant name, so "cn/1" and "cryptonight/1" resolve to the
// same row. Both the short ("cn") and long ("cryptonight") forms are
// accepted.
var aliases = map[string]string{
	"cn":             "cryptonight/1",
	"cn/0":           "cryptonight/0",
	"cn/1":           "cryptonight/1",
	"cn/xtl":         "cryptonight/xtl",
	"cn/msr":         "cryptonight/msr",
	"cn/xao":         "cryptonight/xao",
	"cn/rto":         "cryptonight/rto",
	"cryptonight":    "cryptonight/1",
	"cryptonight/0":  "cryptonight/0",
	"cryptonight/1":  "cryptonight/1",
	"cryptonight/xtl": "cryptonight/xtl",
	"cryptonight/msr": "cryptonight/msr",
	"cryptonight/xao": "cryptonight/xao",
	"cryptonight/rto": "cryptonight/rto",

	"cn-lite":            "cryptonight-lite/1",
	"cn-lite/0":          "cryptonight-lite/0",
	"cn-lite/1":          "cryptonight-lite/1",
	"cryptonight-lite":   "cryptonight-lite/1",
	"cryptonight-lite/0": "cryptonight-lite/0",
	"cryptonight-lite/1": "cryptonight-lite/1",

	"cn-heavy":             "cryptonight-heavy/0",
	"cn-heavy/0":           "cryptonight-heavy/0",
	"cn-heavy/xhv":         "cryptonight-heavy/xhv",
	"cn-heavy/tube":        "cryptonight-heavy/tube",
	"cryptonight-heavy":    "cryptonight-heavy/0",
	"cryptonight-heavy/0":  "cryptonight-heavy/0",
	"cryptonight-heavy/xhv": "cryptonight-heavy/xhv",
	"cryptonight-heavy/tube": "cryptonight-heavy/tube",
}

var familyMem = map[string]int{
	"cryptonight":       CNMem,
	"cryptonight-lite":  CNLiteMem,
	"cryptonight-heavy": CNHeavyMem,
}

func family(canonical string) string {
	for i := 0; i < len(canonical); i++ {
		if canonical[i] == '/' {
			return canonical[:i]
		}
	}
	return canonical
}

// New builds the registry. This is the Go-idiomatic rendering of the source's
// macro-generated table: a literal, data-only construction, no codegen.
func New() *Registry {
	r := &Registry{
		funcs:    make(map[Key]hash.Func),
		memBytes: make(map[string]int),
	}

	for alias, canonical := range aliases {
		fam := family(canonical)
		mem := familyMem[fam]
		r.memBytes[alias] = mem

		// ways=1 occupies table row 0: the source computed index as ways-1
		// and that convention is preserved here, even though a Go map keyed
		// on Ways directly has no notion of "row".
		for ways := 1; ways <= 5; ways++ {
			for _, soft := range []bool{false, true} {
				variant := canonical
				fn := hash.New(fam, variant, soft)
				r.funcs[Key{Algo: alias, Ways: ways, SoftAES: soft}] = fn
			}
		}
	}

	return r
}

// Lookup returns the hash-function handle for (algo, ways, soft_aes), or an
// error if the combination is not in the registry (unsupported algo, or
// ways outside [1, MAX_WAYS]).
func (r *Registry) Lookup(algo string, ways int, softAES bool) (hash.Func, error) {
	if ways < 1 || ways > 5 {
		return nil, fmt.Errorf("ways %d out of range", ways)
	}
	fn, ok := r.funcs[Key{Algo: algo, Ways: ways, SoftAES: softAES}]
	if !ok {
		return nil, fmt.Errorf("unsupported algo %q", algo)
	}
	return fn, nil
}

// MemBytes returns the scratchpad size for algo, or 0 if unsupported.
func (r *Registry) MemBytes(algo string) (int, bool) {
	mem, ok := r.memBytes[algo]
	return mem, ok
}

// Supported reports whether algo is a known registry key, independent of
// ways/soft_aes.
func (r *Registry) Supported(algo string) bool {
	_, ok := r.memBytes[algo]
	return ok
}
