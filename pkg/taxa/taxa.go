package taxa

import (
	"slices"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
)

// Taxa is an ordered taxon table. Taxon i (1-based) has label Label(i).
//
// The zero value is an empty table ready to use. Taxa is not safe for
// concurrent mutation; a table is built once and then shared read-only.
type Taxa struct {
	labels []string
	index  map[string]int
	hidden Set
}

// New creates a table with the given labels in order. Labels must be valid
// and unique.
func New(labels ...string) (*Taxa, error) {
	t := &Taxa{}
	for _, l := range labels {
		if _, err := t.Add(l); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add appends a new taxon and returns its index. Adding an existing label is
// an error; use Ensure to look up or add.
func (t *Taxa) Add(label string) (int, error) {
	if err := zerrors.ValidateTaxonLabel(label); err != nil {
		return 0, err
	}
	if _, ok := t.index[label]; ok {
		return 0, zerrors.New(zerrors.ErrCodeInvalidInput, "duplicate taxon label %q", label)
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.labels = append(t.labels, label)
	t.index[label] = len(t.labels)
	return len(t.labels), nil
}

// Ensure returns the index of label, adding it if absent.
func (t *Taxa) Ensure(label string) (int, error) {
	if i, ok := t.index[label]; ok {
		return i, nil
	}
	return t.Add(label)
}

// Len returns the number of taxa n.
func (t *Taxa) Len() int { return len(t.labels) }

// Label returns the label of taxon i, or "" if i is out of range.
func (t *Taxa) Label(i int) string {
	if i < 1 || i > len(t.labels) {
		return ""
	}
	return t.labels[i-1]
}

// Index returns the taxon index for label.
func (t *Taxa) Index(label string) (int, bool) {
	i, ok := t.index[label]
	return i, ok
}

// Labels returns a copy of the labels in taxon order.
func (t *Taxa) Labels() []string { return slices.Clone(t.labels) }

// Hide marks the named taxa as hidden. Unknown labels are an error.
func (t *Taxa) Hide(labels ...string) error {
	for _, l := range labels {
		i, ok := t.index[l]
		if !ok {
			return zerrors.New(zerrors.ErrCodeInvalidInput, "cannot hide unknown taxon %q", l)
		}
		t.hidden.Add(i)
	}
	return nil
}

// IsHidden reports whether taxon i is hidden.
func (t *Taxa) IsHidden(i int) bool { return t.hidden.Has(i) }

// Hidden returns the hidden taxa.
func (t *Taxa) Hidden() Set { return t.hidden.Clone() }

// All returns {1..n}.
func (t *Taxa) All() Set { return Range(t.Len()) }

// Visible returns all taxa that are not hidden.
func (t *Taxa) Visible() Set { return t.All().Minus(t.hidden) }

// Format renders a set using taxon labels, e.g. {A,C,D}.
func (t *Taxa) Format(s Set) string {
	out := make([]byte, 0, 2+4*s.Len())
	out = append(out, '{')
	first := true
	for i := range s.All() {
		if !first {
			out = append(out, ',')
		}
		out = append(out, t.Label(i)...)
		first = false
	}
	return string(append(out, '}'))
}
