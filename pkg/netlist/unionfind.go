package netlist

// unionFind is a disjoint-set forest over comparable keys with path
// compression and union by rank. Keys are added lazily on first use.
type unionFind[K comparable] struct {
	parent map[K]K
	rank   map[K]int
}

func newUnionFind[K comparable]() *unionFind[K] {
	return &unionFind[K]{
		parent: make(map[K]K),
		rank:   make(map[K]int),
	}
}

// add registers k as a singleton if it is not already known.
func (u *unionFind[K]) add(k K) {
	if _, ok := u.parent[k]; !ok {
		u.parent[k] = k
	}
}

// find returns the representative of k's set.
func (u *unionFind[K]) find(k K) K {
	u.add(k)
	root := k
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for k != root {
		next := u.parent[k]
		u.parent[k] = root
		k = next
	}
	return root
}

// union merges the sets holding a and b.
func (u *unionFind[K]) union(a, b K) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
