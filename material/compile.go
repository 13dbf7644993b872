package material

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gogpu/naga"
)

// compileCache memoizes compiled SPIR-V keyed by an FNV-1a hash of the
// full WGSL source, so recompilation cost is paid once per distinct
// host-program and splice combination and shared across all instances
// using it.
var compileCache = struct {
	sync.Mutex
	entries map[uint64][]byte
}{entries: make(map[uint64][]byte)}

// Compile translates the program's WGSL source to SPIR-V. The result
// is cached on the program and in a process-wide cache keyed by source
// hash; Splice invalidates the per-program copy.
func (p *Program) Compile() ([]byte, error) {
	if p.compiled != nil {
		return p.compiled, nil
	}

	key := sourceKey(p.source)
	compileCache.Lock()
	spirv, ok := compileCache.entries[key]
	compileCache.Unlock()
	if ok {
		p.compiled = spirv
		return spirv, nil
	}

	spirv, err := naga.Compile(p.source)
	if err != nil {
		return nil, fmt.Errorf("material: compile program: %w", err)
	}

	compileCache.Lock()
	compileCache.entries[key] = spirv
	compileCache.Unlock()
	p.compiled = spirv
	return spirv, nil
}

// Validate compiles the source and discards the binary, reporting
// translation errors without caching a result on the program.
func (p *Program) Validate() error {
	_, err := p.Compile()
	return err
}

func sourceKey(source string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(source))
	return h.Sum64()
}
