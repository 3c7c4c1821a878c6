package matrix

import "strings"

// Label identifies one row or column by its field values
type Label []string

// Equal reports whether two labels match field by field
func (l Label) Equal(other Label) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the label for diagnostics only
func (l Label) String() string {
	return "(" + strings.Join(l, ", ") + ")"
}

// Clone returns an independent copy
func (l Label) Clone() Label {
	out := make(Label, len(l))
	copy(out, l)
	return out
}

// Axis is an ordered list of labels with named levels
type Axis struct {
	Names  []string
	Labels []Label
}

// NewAxis creates an axis with the given level names
func NewAxis(names []string, labels []Label) Axis {
	return Axis{Names: names, Labels: labels}
}

// Len returns the number of labels
func (a Axis) Len() int {
	return len(a.Labels)
}

// Level returns the values of one level in axis order
func (a Axis) Level(name string) []string {
	idx := -1
	for i, n := range a.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, len(a.Labels))
	for i, l := range a.Labels {
		if idx < len(l) {
			out[i] = l[idx]
		}
	}
	return out
}

// Select returns a new axis holding the labels at the given positions
func (a Axis) Select(positions []int) Axis {
	labels := make([]Label, len(positions))
	for i, p := range positions {
		labels[i] = a.Labels[p].Clone()
	}
	names := make([]string, len(a.Names))
	copy(names, a.Names)
	return Axis{Names: names, Labels: labels}
}

// Clone returns a deep copy
func (a Axis) Clone() Axis {
	positions := make([]int, len(a.Labels))
	for i := range positions {
		positions[i] = i
	}
	return a.Select(positions)
}
