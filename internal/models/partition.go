package models

import "time"

// Partition is the cached listing for one (identity, folder). A published
// partition is never mutated; changes produce a new partition.
type Partition struct {
	Entries    []*EmailSummary
	TotalCount int
	FetchedAt  time.Time
}

func (p *Partition) Find(uid uint32) (*EmailSummary, bool) {
	for _, e := range p.Entries {
		if e.UID == uid {
			return e, true
		}
	}
	return nil, false
}

// WithDetail returns a copy of the partition whose entry for uid carries detail.
func (p *Partition) WithDetail(uid uint32, detail *EmailDetail) (*Partition, bool) {
	idx := -1
	for i, e := range p.Entries {
		if e.UID == uid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p, false
	}

	entries := make([]*EmailSummary, len(p.Entries))
	copy(entries, p.Entries)
	patched := *entries[idx]
	patched.Detail = detail
	entries[idx] = &patched

	return &Partition{
		Entries:    entries,
		TotalCount: p.TotalCount,
		FetchedAt:  p.FetchedAt,
	}, true
}
