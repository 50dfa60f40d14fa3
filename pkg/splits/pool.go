package splits

// Pool is an insertion-ordered, deduplicated collection of partial splits.
//
// The zero value is an empty pool ready to use. Pool is not safe for
// concurrent use.
type Pool struct {
	buckets map[uint64][]int
	items   []*PartialSplit
}

// NewPool returns a pool holding the given splits, deduplicated in order.
func NewPool(splits ...*PartialSplit) *Pool {
	p := &Pool{buckets: make(map[uint64][]int, len(splits))}
	for _, ps := range splits {
		p.Add(ps)
	}
	return p
}

// Add inserts ps unless an equal split is already present. It reports whether
// the pool grew. The pool keeps ps itself, not a copy.
func (p *Pool) Add(ps *PartialSplit) bool {
	if p.buckets == nil {
		p.buckets = make(map[uint64][]int)
	}
	h := ps.Hash()
	for _, i := range p.buckets[h] {
		if p.items[i].Equal(ps) {
			return false
		}
	}
	p.buckets[h] = append(p.buckets[h], len(p.items))
	p.items = append(p.items, ps)
	return true
}

// AddAll inserts every split of o and returns how many were new.
func (p *Pool) AddAll(o *Pool) int {
	added := 0
	for _, ps := range o.items {
		if p.Add(ps) {
			added++
		}
	}
	return added
}

// Get returns the stored split equal to ps.
func (p *Pool) Get(ps *PartialSplit) (*PartialSplit, bool) {
	if i := p.Index(ps); i >= 0 {
		return p.items[i], true
	}
	return nil, false
}

// Index returns the position of the split equal to ps, or -1.
func (p *Pool) Index(ps *PartialSplit) int {
	for _, i := range p.buckets[ps.Hash()] {
		if p.items[i].Equal(ps) {
			return i
		}
	}
	return -1
}

// Contains reports whether an equal split is present.
func (p *Pool) Contains(ps *PartialSplit) bool {
	_, ok := p.Get(ps)
	return ok
}

// Len returns the number of splits.
func (p *Pool) Len() int { return len(p.items) }

// At returns the i-th split in insertion order.
func (p *Pool) At(i int) *PartialSplit { return p.items[i] }

// Splits returns the splits in insertion order. The slice is a copy; the
// splits are shared.
func (p *Pool) Splits() []*PartialSplit {
	out := make([]*PartialSplit, len(p.items))
	copy(out, p.items)
	return out
}

// SubsetOf reports whether every split of p is in o.
func (p *Pool) SubsetOf(o *Pool) bool {
	for _, ps := range p.items {
		if !o.Contains(ps) {
			return false
		}
	}
	return true
}
