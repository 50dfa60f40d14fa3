package cache

// ClosureKeyOpts holds every option that changes a closure result.
type ClosureKeyOpts struct {
	ZRule        bool     `json:"zrule"`
	LeastSquares bool     `json:"least_squares"`
	SuperTree    bool     `json:"super_tree"`
	Runs         int      `json:"runs"`
	Seed         uint64   `json:"seed"`
	Refine       bool     `json:"refine"`
	Weighting    string   `json:"weighting"`
	Taxa         []string `json:"taxa,omitempty"`
	Hidden       []string `json:"hidden,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ClosureKey returns the key for the closure of the given input under opts.
	ClosureKey(input []byte, opts ClosureKeyOpts) string
}

// DefaultKeyer hashes inputs and options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ClosureKey implements [Keyer].
func (DefaultKeyer) ClosureKey(input []byte, opts ClosureKeyOpts) string {
	return hashKey("closure", Hash(input), opts)
}
