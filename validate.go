package tilesheet

import (
	"fmt"
	"slices"
)

// Problem is one consistency violation found in a grid.
type Problem struct {
	Cell  Coord
	Issue string
}

// String implements fmt.Stringer.
func (p Problem) String() string {
	return fmt.Sprintf("%v: %s", p.Cell, p.Issue)
}

// Validate reports every consistency violation without modifying g.
// A grid built only through Place and Remove always validates clean;
// problems come from stale or hand-edited metadata.
func (g *Grid) Validate() []Problem {
	return g.Clone().Repair()
}

// Repair brings g back to a consistent state and reports what it changed.
//
// Entries outside the grid or without a source are dropped, as are anchors
// whose footprint leaves the grid. When two footprints overlap, the anchor
// that comes later in row-major order is dropped. Dependents whose anchor
// is gone or whose tile lies outside the anchor footprint are dropped,
// anchor dependency lists are rebuilt from the dependents that point back
// at them, and footprint tiles an anchor lost are re-created.
func (g *Grid) Repair() []Problem {
	var problems []Problem
	report := func(c Coord, format string, args ...any) {
		problems = append(problems, Problem{Cell: c, Issue: fmt.Sprintf(format, args...)})
	}

	for _, c := range g.Coords() {
		e := g.entries[c]
		switch {
		case !g.InBounds(c):
			report(c, "outside %dx%d grid, dropped", g.cols, g.rows)
			delete(g.entries, c)
			continue
		case e.Role != RoleAnchor && e.Role != RoleDependent:
			report(c, "unknown role %v, dropped", e.Role)
			delete(g.entries, c)
			continue
		case e.Source == "":
			report(c, "no source name, dropped")
			delete(g.entries, c)
			continue
		case e.Transform.Rotation%90 != 0:
			report(c, "rotation %d, dropped", e.Transform.Rotation)
			delete(g.entries, c)
			continue
		case e.Role == RoleAnchor && (e.Width <= 0 || e.Height <= 0):
			report(c, "anchor size %dx%d, dropped", e.Width, e.Height)
			delete(g.entries, c)
			continue
		case e.Role == RoleAnchor && !g.fits(c, e.Width, e.Height):
			report(c, "anchor size %dx%d leaves the %dx%d grid, dropped", e.Width, e.Height, g.cols, g.rows)
			delete(g.entries, c)
			continue
		}
		if e.Pos != c {
			report(c, "recorded position %v, corrected", e.Pos)
			e.Pos = c
			g.entries[c] = e
		}
	}

	// Footprints only extend right and down, so an earlier anchor in
	// row-major order always claims its tiles first.
	footprints := make(map[Coord][]Coord)
	claimed := make(map[Coord]Coord)
	for _, c := range g.Coords() {
		e := g.entries[c]
		if e.Role != RoleAnchor {
			continue
		}
		fp := Footprint(c, e.Width, e.Height, g.tileSize)
		if i := slices.IndexFunc(fp, func(fc Coord) bool { _, ok := claimed[fc]; return ok }); i >= 0 {
			report(c, "footprint overlaps anchor %v at %v, dropped", claimed[fp[i]], fp[i])
			delete(g.entries, c)
			continue
		}
		for _, fc := range fp {
			claimed[fc] = c
		}
		footprints[c] = fp
	}

	owned := make(map[Coord][]Coord)
	for _, c := range g.Coords() {
		e := g.entries[c]
		if e.Role != RoleDependent {
			continue
		}
		fp, ok := footprints[e.AnchorPos]
		switch {
		case !ok:
			report(c, "anchor %v does not exist, dropped", e.AnchorPos)
			delete(g.entries, c)
		case !slices.Contains(fp, c):
			report(c, "outside footprint of anchor %v, dropped", e.AnchorPos)
			delete(g.entries, c)
		default:
			owned[e.AnchorPos] = append(owned[e.AnchorPos], c)
		}
	}

	for _, c := range g.Coords() {
		a := g.entries[c]
		if a.Role != RoleAnchor {
			continue
		}
		deps := owned[c]
		for _, fc := range footprints[c] {
			switch {
			case fc == c || slices.Contains(deps, fc):
				continue
			case g.HasCell(fc):
				report(fc, "footprint of anchor %v overlaps another placement", c)
				continue
			}
			report(fc, "missing from footprint of anchor %v, restored", c)
			g.entries[fc] = Entry{
				Pos:       fc,
				Source:    a.Source,
				Transform: a.Transform,
				Role:      RoleDependent,
				AnchorPos: c,
			}
			deps = append(deps, fc)
		}
		slices.SortFunc(deps, compareCoords)

		want := slices.Clone(a.Dependents)
		slices.SortFunc(want, compareCoords)
		if !slices.Equal(want, deps) {
			report(c, "dependency list %v rebuilt as %v", a.Dependents, deps)
		}
		if len(deps) == 0 {
			deps = nil
		}
		a.Dependents = deps
		g.entries[c] = a
	}

	g.refreshUsed()
	return problems
}
