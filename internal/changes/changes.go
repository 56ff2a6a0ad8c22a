// Package changes classifies scanned files against the stored index.
package changes

import "sort"

// Changes is the classification of every path seen in either input.
// Each list is sorted ascending.
type Changes struct {
	New       []string
	Changed   []string
	Removed   []string
	Unchanged []string
}

// Pending returns New followed by Changed: the paths that need a label and an embedding.
func (c Changes) Pending() []string {
	out := make([]string, 0, len(c.New)+len(c.Changed))
	out = append(out, c.New...)
	return append(out, c.Changed...)
}

// Empty reports whether nothing needs to be written or deleted.
func (c Changes) Empty() bool {
	return len(c.New) == 0 && len(c.Changed) == 0 && len(c.Removed) == 0
}

// Diff compares scanned path→hash against stored path→hash.
func Diff(scanned, stored map[string]string) Changes {
	var c Changes
	for path, hash := range scanned {
		old, ok := stored[path]
		switch {
		case !ok:
			c.New = append(c.New, path)
		case old != hash:
			c.Changed = append(c.Changed, path)
		default:
			c.Unchanged = append(c.Unchanged, path)
		}
	}
	for path := range stored {
		if _, ok := scanned[path]; !ok {
			c.Removed = append(c.Removed, path)
		}
	}
	sort.Strings(c.New)
	sort.Strings(c.Changed)
	sort.Strings(c.Removed)
	sort.Strings(c.Unchanged)
	return c
}
