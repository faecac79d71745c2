package rundownlog

import "github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"

// compiledFilter holds precompiled include/exclude kind sets for O(1)
// filtering on the hot path.
type compiledFilter struct {
	include map[event.Kind]struct{}
	exclude map[event.Kind]struct{}
}

// newCompiledFilter builds a filter from include and exclude kind lists.
// Exclude takes precedence over include.
func newCompiledFilter(include, exclude []event.Kind) *compiledFilter {
	f := &compiledFilter{}
	if len(include) > 0 {
		f.include = make(map[event.Kind]struct{}, len(include))
		for _, k := range include {
			f.include[k] = struct{}{}
		}
	}
	if len(exclude) > 0 {
		f.exclude = make(map[event.Kind]struct{}, len(exclude))
		for _, k := range exclude {
			f.exclude[k] = struct{}{}
		}
	}
	return f
}

// Allows reports whether events of the given kind pass the filter.
func (f *compiledFilter) Allows(k event.Kind) bool {
	if f.exclude != nil {
		if _, excluded := f.exclude[k]; excluded {
			return false
		}
	}
	if f.include != nil {
		_, included := f.include[k]
		return included
	}
	return true
}
