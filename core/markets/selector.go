package markets

import "fmt"

// PairSelector identifies a pair by name or by index. Constructing one via
// ByName/ByIndex keeps the string-vs-number branching out of every consumer;
// the directory resolves it to a canonical index before any lookup.
type PairSelector struct {
	name    string
	index   int
	byIndex bool
}

// ByName selects a pair by its display name, case-insensitively.
func ByName(name string) PairSelector {
	return PairSelector{name: name}
}

// ByIndex selects a pair by its contract-assigned index.
func ByIndex(index int) PairSelector {
	return PairSelector{index: index, byIndex: true}
}

func (s PairSelector) String() string {
	if s.byIndex {
		return fmt.Sprintf("pair #%d", s.index)
	}
	return fmt.Sprintf("pair %q", s.name)
}
