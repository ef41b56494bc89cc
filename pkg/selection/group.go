// Package selection enforces check-state rules inside a group of sibling
// answer options: radio style single choice, free multi choice, and exclusive
// catch-all options that cannot be combined with any sibling.
package selection

import "strings"

// Mode selects between radio and checkbox semantics.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Option is one input inside a group.
type Option struct {
	Value     string `json:"value" yaml:"value"`
	Label     string `json:"label" yaml:"label"`
	Exclusive bool   `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
}

// Group holds the check-state of a set of sibling options. The zero value is
// not usable; construct groups with NewGroup.
type Group struct {
	name    string
	mode    Mode
	options []Option
	checked map[string]bool
}

// NewGroup builds a group. Options with an empty value are dropped and
// duplicates keep their first occurrence.
func NewGroup(name string, mode Mode, options []Option) *Group {
	if mode != ModeSingle {
		mode = ModeMulti
	}
	g := &Group{
		name:    strings.TrimSpace(name),
		mode:    mode,
		checked: make(map[string]bool),
	}
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		value := strings.TrimSpace(opt.Value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		opt.Value = value
		g.options = append(g.options, opt)
	}
	return g
}

// Name reports the input name shared by the group members.
func (g *Group) Name() string { return g.name }

// Mode reports the group mode.
func (g *Group) Mode() Mode { return g.mode }

// Options returns a copy of the configured options in declaration order.
func (g *Group) Options() []Option {
	return append([]Option(nil), g.options...)
}

// Change applies a change notification for value. Values that are not part
// of the group are ignored. Re-applying the same change yields the same state.
func (g *Group) Change(value string, checked bool) {
	opt, ok := g.option(value)
	if !ok {
		return
	}
	if !checked {
		delete(g.checked, opt.Value)
		return
	}

	switch {
	case g.mode == ModeSingle:
		g.clear()
	case opt.Exclusive:
		g.clear()
	default:
		for _, sibling := range g.options {
			if sibling.Exclusive {
				delete(g.checked, sibling.Value)
			}
		}
	}
	g.checked[opt.Value] = true
}

// Replace moves the group to the selection reported by a prompt that returns
// the whole set at once. Removed values are unchecked first, then newly added
// values are replayed as change events: regular options in option order,
// exclusive options last, so an exclusive option added alongside regular ones
// always wins.
func (g *Group) Replace(values []string) {
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[strings.TrimSpace(v)] = true
	}
	var added, exclusive []string
	for _, opt := range g.options {
		switch {
		case g.checked[opt.Value] && !want[opt.Value]:
			g.Change(opt.Value, false)
		case want[opt.Value] && !g.checked[opt.Value] && opt.Exclusive:
			exclusive = append(exclusive, opt.Value)
		case want[opt.Value] && !g.checked[opt.Value]:
			added = append(added, opt.Value)
		}
	}
	for _, value := range append(added, exclusive...) {
		g.Change(value, true)
	}
}

// IsChecked reports whether value is currently checked.
func (g *Group) IsChecked(value string) bool {
	return g.checked[strings.TrimSpace(value)]
}

// Checked lists checked values in option order.
func (g *Group) Checked() []string {
	var out []string
	for _, opt := range g.options {
		if g.checked[opt.Value] {
			out = append(out, opt.Value)
		}
	}
	return out
}

// First returns the first checked value, if any.
func (g *Group) First() (string, bool) {
	for _, opt := range g.options {
		if g.checked[opt.Value] {
			return opt.Value, true
		}
	}
	return "", false
}

// Reset unchecks every option.
func (g *Group) Reset() {
	g.clear()
}

func (g *Group) clear() {
	for key := range g.checked {
		delete(g.checked, key)
	}
}

func (g *Group) option(value string) (Option, bool) {
	value = strings.TrimSpace(value)
	for _, opt := range g.options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}
