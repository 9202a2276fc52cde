package brackets

import "github.com/nkhatu/SwissRoundRobinApp-sub000/models"

// hasPerfectMatching reports whether players can all be paired without a
// rematch. It runs Edmonds' blossom algorithm on the graph of pairs that have
// not met yet, in O(n^3).
func hasPerfectMatching(players []int, played map[[2]int]bool) bool {
	n := len(players)
	if n%2 != 0 {
		return false
	}
	if n == 0 {
		return true
	}

	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !played[models.PairKey(players[i], players[j])] {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}
	for _, edges := range adj {
		if len(edges) == 0 {
			return false
		}
	}

	b := newBlossom(adj)
	return b.maxMatching() == n/2
}

type blossom struct {
	n         int
	adj       [][]int
	match     []int
	parent    []int
	base      []int
	used      []bool
	inBlossom []bool
	onPath    []bool
	queue     []int
}

func newBlossom(adj [][]int) *blossom {
	n := len(adj)
	b := &blossom{
		n:         n,
		adj:       adj,
		match:     make([]int, n),
		parent:    make([]int, n),
		base:      make([]int, n),
		used:      make([]bool, n),
		inBlossom: make([]bool, n),
		onPath:    make([]bool, n),
		queue:     make([]int, 0, n),
	}
	for i := range b.match {
		b.match[i] = -1
	}
	return b
}

func (b *blossom) maxMatching() int {
	// Greedy start; augmenting paths fix the rest.
	size := 0
	for v := 0; v < b.n; v++ {
		if b.match[v] != -1 {
			continue
		}
		for _, to := range b.adj[v] {
			if b.match[to] == -1 {
				b.match[v], b.match[to] = to, v
				size++
				break
			}
		}
	}

	for v := 0; v < b.n; v++ {
		if b.match[v] != -1 {
			continue
		}
		u := b.augmentingPath(v)
		if u == -1 {
			continue
		}
		size++
		for u != -1 {
			pv := b.parent[u]
			next := b.match[pv]
			b.match[u], b.match[pv] = pv, u
			u = next
		}
	}
	return size
}

// lca finds the common base of a and c in the alternating forest.
func (b *blossom) lca(a, c int) int {
	for i := range b.onPath {
		b.onPath[i] = false
	}
	for {
		a = b.base[a]
		b.onPath[a] = true
		if b.match[a] == -1 {
			break
		}
		a = b.parent[b.match[a]]
	}
	for {
		c = b.base[c]
		if b.onPath[c] {
			return c
		}
		c = b.parent[b.match[c]]
	}
}

func (b *blossom) markPath(v, ancestor, child int) {
	for b.base[v] != ancestor {
		b.inBlossom[b.base[v]] = true
		b.inBlossom[b.base[b.match[v]]] = true
		b.parent[v] = child
		child = b.match[v]
		v = b.parent[b.match[v]]
	}
}

// augmentingPath grows an alternating tree from root and returns the free
// vertex that ends an augmenting path, or -1.
func (b *blossom) augmentingPath(root int) int {
	for i := 0; i < b.n; i++ {
		b.used[i] = false
		b.parent[i] = -1
		b.base[i] = i
	}
	b.used[root] = true
	b.queue = append(b.queue[:0], root)

	for head := 0; head < len(b.queue); head++ {
		v := b.queue[head]
		for _, to := range b.adj[v] {
			if b.base[v] == b.base[to] || b.match[v] == to {
				continue
			}
			if to == root || (b.match[to] != -1 && b.parent[b.match[to]] != -1) {
				cur := b.lca(v, to)
				for i := range b.inBlossom {
					b.inBlossom[i] = false
				}
				b.markPath(v, cur, to)
				b.markPath(to, cur, v)
				for i := 0; i < b.n; i++ {
					if b.inBlossom[b.base[i]] {
						b.base[i] = cur
						if !b.used[i] {
							b.used[i] = true
							b.queue = append(b.queue, i)
						}
					}
				}
			} else if b.parent[to] == -1 {
				b.parent[to] = v
				if b.match[to] == -1 {
					return to
				}
				b.used[b.match[to]] = true
				b.queue = append(b.queue, b.match[to])
			}
		}
	}
	return -1
}
