package scene

import "sort"

// Changeset lists the artifacts that differ between two graphs.
type Changeset struct {
	AddedMarkers   []Marker
	RemovedMarkers []Marker
	AddedLines     []Line
	RemovedLines   []Line
}

// IsEmpty reports whether the graphs were equivalent.
func (c *Changeset) IsEmpty() bool {
	return len(c.AddedMarkers) == 0 && len(c.RemovedMarkers) == 0 &&
		len(c.AddedLines) == 0 && len(c.RemovedLines) == 0
}

// Diff compares two graphs by artifact id. An artifact whose id survives
// but whose content changed appears in both the removed and added lists,
// since drawn artifacts are replaced rather than patched.
func Diff(old, updated Graph) *Changeset {
	cs := &Changeset{
		AddedMarkers:   []Marker{},
		RemovedMarkers: []Marker{},
		AddedLines:     []Line{},
		RemovedLines:   []Line{},
	}

	oldMarkers := make(map[string]Marker, len(old.Markers))
	for _, m := range old.Markers {
		oldMarkers[m.ID] = m
	}
	newMarkers := make(map[string]Marker, len(updated.Markers))
	for _, m := range updated.Markers {
		newMarkers[m.ID] = m
	}
	for _, m := range updated.Markers {
		if prev, ok := oldMarkers[m.ID]; !ok || prev != m {
			cs.AddedMarkers = append(cs.AddedMarkers, m)
		}
	}
	for _, m := range old.Markers {
		if next, ok := newMarkers[m.ID]; !ok || next != m {
			cs.RemovedMarkers = append(cs.RemovedMarkers, m)
		}
	}

	oldLines := make(map[string]Line, len(old.Lines))
	for _, l := range old.Lines {
		oldLines[l.ID] = l
	}
	newLines := make(map[string]Line, len(updated.Lines))
	for _, l := range updated.Lines {
		newLines[l.ID] = l
	}
	for _, l := range updated.Lines {
		if prev, ok := oldLines[l.ID]; !ok || prev != l {
			cs.AddedLines = append(cs.AddedLines, l)
		}
	}
	for _, l := range old.Lines {
		if next, ok := newLines[l.ID]; !ok || next != l {
			cs.RemovedLines = append(cs.RemovedLines, l)
		}
	}

	sort.Slice(cs.AddedMarkers, func(i, j int) bool { return cs.AddedMarkers[i].ID < cs.AddedMarkers[j].ID })
	sort.Slice(cs.RemovedMarkers, func(i, j int) bool { return cs.RemovedMarkers[i].ID < cs.RemovedMarkers[j].ID })
	sort.Slice(cs.AddedLines, func(i, j int) bool { return cs.AddedLines[i].ID < cs.AddedLines[j].ID })
	sort.Slice(cs.RemovedLines, func(i, j int) bool { return cs.RemovedLines[i].ID < cs.RemovedLines[j].ID })

	return cs
}
