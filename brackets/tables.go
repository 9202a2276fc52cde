package brackets

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// TableAssigner hands out table numbers for a round. Table identity carries
// no ranking meaning, so numbers are drawn uniformly from the free pool.
type TableAssigner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTableAssigner returns a deterministic assigner, used by tests and by
// deployments that set a fixed seed.
func NewTableAssigner(seed uint64) *TableAssigner {
	return &TableAssigner{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomTableAssigner seeds the assigner from crypto/rand.
func NewRandomTableAssigner() *TableAssigner {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return &TableAssigner{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &TableAssigner{rng: rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))}
}

// Assign returns one distinct table number per pair. Busy tables are skipped.
// tableCount 0 means an unbounded venue: the pool grows past the busy tables
// until every pair has one.
func (a *TableAssigner) Assign(pairs, tableCount int, busy map[int]bool) ([]int, error) {
	if pairs == 0 {
		return []int{}, nil
	}
	if tableCount == 0 {
		tableCount = pairs + len(busy)
	}

	free := make([]int, 0, tableCount)
	for t := 1; t <= tableCount; t++ {
		if !busy[t] {
			free = append(free, t)
		}
	}
	if len(free) < pairs {
		return nil, fmt.Errorf("%w: %d pairs, %d free of %d tables", ErrNotEnoughTables, pairs, len(free), tableCount)
	}

	a.mu.Lock()
	a.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	a.mu.Unlock()

	return free[:pairs], nil
}
