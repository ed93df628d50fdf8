package queue

import "slices"

// DefaultRecentLimit is how many served items are kept out of rotation.
const DefaultRecentLimit = 5

// RecentList remembers the most recently served item ids.
type RecentList struct {
	limit int
	ids   []string
}

// NewRecentList creates a list holding at most limit ids.
func NewRecentList(limit int) *RecentList {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RecentList{limit: limit}
}

// Add records id as the most recent, evicting the oldest past the limit.
func (r *RecentList) Add(id string) {
	r.ids = slices.DeleteFunc(r.ids, func(s string) bool { return s == id })
	r.ids = append(r.ids, id)
	if len(r.ids) > r.limit {
		r.ids = r.ids[len(r.ids)-r.limit:]
	}
}

// IDs returns the remembered ids, oldest first.
func (r *RecentList) IDs() []string {
	return slices.Clone(r.ids)
}

// Reset forgets every id.
func (r *RecentList) Reset() {
	r.ids = nil
}
