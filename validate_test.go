package tilesheet

import (
	"math"
	"slices"
	"strings"
	"testing"
)

func TestValidateCleanGrid(t *testing.T) {
	g := mustGrid(t, 16, 4, 4)
	mustPlace(t, g, Coord{0, 0}, Source{Name: "a.png", Width: 32, Height: 32}, Transform{})
	mustPlace(t, g, Coord{2, 0}, Source{Name: "b.png", Width: 16, Height: 48}, Transform{Rotation: 90})

	if problems := g.Validate(); len(problems) != 0 {
		t.Errorf("Validate() = %v, want none", problems)
	}
}

func TestValidateDoesNotModify(t *testing.T) {
	g := mustGrid(t, 16, 3, 3)
	mustPlace(t, g, Coord{0, 0}, Source{Name: "a.png", Width: 32, Height: 16}, Transform{})
	delete(g.entries, Coord{0, 0})
	before := g.Clone()

	if problems := g.Validate(); len(problems) == 0 {
		t.Fatal("Validate() found no problems in a grid with an orphan")
	}
	if !g.Equal(before) {
		t.Error("Validate() modified the grid")
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Grid)
		check   func(t *testing.T, g *Grid)
		issue   string
	}{
		{
			name: "orphan dependent dropped",
			corrupt: func(g *Grid) {
				delete(g.entries, Coord{0, 0})
			},
			check: func(t *testing.T, g *Grid) {
				if g.HasCell(Coord{1, 0}) {
					t.Error("orphan dependent survived")
				}
			},
			issue: "does not exist",
		},
		{
			name: "missing dependent restored",
			corrupt: func(g *Grid) {
				delete(g.entries, Coord{1, 0})
			},
			check: func(t *testing.T, g *Grid) {
				e, ok := g.Cell(Coord{1, 0})
				if !ok || e.Role != RoleDependent || e.AnchorPos != (Coord{0, 0}) {
					t.Errorf("Cell(1,0) = (%+v, %v), want restored dependent", e, ok)
				}
			},
			issue: "restored",
		},
		{
			name: "stale dependency list rebuilt",
			corrupt: func(g *Grid) {
				a := g.entries[Coord{0, 0}]
				a.Dependents = []Coord{{2, 2}}
				g.entries[Coord{0, 0}] = a
			},
			check: func(t *testing.T, g *Grid) {
				a, _ := g.Cell(Coord{0, 0})
				if !slices.Equal(a.Dependents, []Coord{{1, 0}}) {
					t.Errorf("Dependents = %v, want [1,0]", a.Dependents)
				}
			},
			issue: "rebuilt",
		},
		{
			name: "dependent outside footprint dropped",
			corrupt: func(g *Grid) {
				g.entries[Coord{2, 2}] = Entry{Pos: Coord{2, 2}, Source: "a.png", Role: RoleDependent, AnchorPos: Coord{0, 0}}
			},
			check: func(t *testing.T, g *Grid) {
				if g.HasCell(Coord{2, 2}) {
					t.Error("stray dependent survived")
				}
			},
			issue: "outside footprint",
		},
		{
			name: "entry outside grid dropped",
			corrupt: func(g *Grid) {
				g.entries[Coord{9, 9}] = Entry{Pos: Coord{9, 9}, Source: "x.png", Role: RoleAnchor, Width: 16, Height: 16}
				g.refreshUsed()
			},
			check: func(t *testing.T, g *Grid) {
				if g.HasCell(Coord{9, 9}) || g.IsUsed("x.png") {
					t.Error("out-of-grid entry survived")
				}
			},
			issue: "outside 3x3 grid",
		},
		{
			name: "anchor leaving the grid dropped",
			corrupt: func(g *Grid) {
				g.entries[Coord{2, 2}] = Entry{Pos: Coord{2, 2}, Source: "x.png", Role: RoleAnchor, Width: math.MaxInt, Height: 16}
			},
			check: func(t *testing.T, g *Grid) {
				if g.HasCell(Coord{2, 2}) {
					t.Error("oversized anchor survived")
				}
				if !g.HasCell(Coord{0, 0}) || !g.HasCell(Coord{1, 0}) {
					t.Error("valid placement was dropped")
				}
			},
			issue: "leaves the 3x3 grid",
		},
		{
			name: "zero-size anchor dropped with its dependents",
			corrupt: func(g *Grid) {
				a := g.entries[Coord{0, 0}]
				a.Width = 0
				g.entries[Coord{0, 0}] = a
			},
			check: func(t *testing.T, g *Grid) {
				if g.Len() != 0 {
					t.Errorf("Len() = %d, want 0", g.Len())
				}
			},
			issue: "anchor size 0x16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrid(t, 16, 3, 3)
			mustPlace(t, g, Coord{0, 0}, Source{Name: "a.png", Width: 32, Height: 16}, Transform{})
			tt.corrupt(g)

			problems := g.Repair()
			found := false
			for _, p := range problems {
				if strings.Contains(p.String(), tt.issue) {
					found = true
				}
			}
			if !found {
				t.Errorf("Repair() = %v, want an issue containing %q", problems, tt.issue)
			}
			tt.check(t, g)
		})
	}
}

func TestRepairedGridIsValid(t *testing.T) {
	g := mustGrid(t, 16, 3, 3)
	mustPlace(t, g, Coord{0, 0}, Source{Name: "a.png", Width: 48, Height: 32}, Transform{})
	delete(g.entries, Coord{1, 1})
	g.entries[Coord{2, 2}] = Entry{Pos: Coord{2, 2}, Source: "b.png", Role: RoleDependent, AnchorPos: Coord{1, 2}}

	g.Repair()
	if problems := g.Validate(); len(problems) != 0 {
		t.Errorf("Validate() after Repair = %v, want none", problems)
	}
}

func TestRepairOverlappingAnchors(t *testing.T) {
	g := mustGrid(t, 16, 3, 3)
	mustPlace(t, g, Coord{0, 0}, Source{Name: "wide.png", Width: 32, Height: 16}, Transform{})
	mustPlace(t, g, Coord{0, 1}, Source{Name: "tall.png", Width: 16, Height: 32}, Transform{})
	// A second anchor written over the wide placement's dependent tile.
	g.entries[Coord{1, 0}] = Entry{Pos: Coord{1, 0}, Source: "small.png", Role: RoleAnchor, Width: 16, Height: 16}
	g.refreshUsed()

	problems := g.Repair()
	found := false
	for _, p := range problems {
		if p.Cell == (Coord{1, 0}) && strings.Contains(p.Issue, "overlaps anchor 0,0") {
			found = true
		}
	}
	if !found {
		t.Errorf("Repair() = %v, want the later anchor at 1,0 reported", problems)
	}
	if v := g.Validate(); len(v) != 0 {
		t.Errorf("Validate() after Repair = %v, want none", v)
	}

	e, ok := g.Cell(Coord{1, 0})
	if !ok || e.Role != RoleDependent || e.AnchorPos != (Coord{0, 0}) {
		t.Errorf("Cell(1,0) = (%+v, %v), want dependent of 0,0", e, ok)
	}
	if g.IsUsed("small.png") {
		t.Error("dropped anchor still counted as used")
	}
	if d, _ := g.Cell(Coord{0, 2}); d.Role != RoleDependent || d.AnchorPos != (Coord{0, 1}) {
		t.Errorf("Cell(0,2) = %+v, want the tall placement untouched", d)
	}
}

func TestRemoveAfterRepairKeepsNeighbourPixels(t *testing.T) {
	captureLogs(t)
	g := mustGrid(t, 16, 3, 3)
	mustPlace(t, g, Coord{0, 0}, Source{Name: "wide.png", Width: 32, Height: 16}, Transform{})
	mustPlace(t, g, Coord{0, 2}, Source{Name: "keep.png", Width: 16, Height: 16}, Transform{})
	g.entries[Coord{1, 0}] = Entry{Pos: Coord{1, 0}, Source: "small.png", Role: RoleAnchor, Width: 16, Height: 16}
	g.Repair()

	p := NewProjector(g, NewNameTable(), nil)
	sheet := NewSheetFor(g)
	sheet.FillRect(sheet.Bounds(), red)

	res, err := g.Remove(Coord{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	p.EraseRemoved(res, sheet)
	if len(res.Missing) != 0 {
		t.Errorf("Remove() reported missing tiles %v after Repair", res.Missing)
	}
	if g.HasCell(Coord{1, 0}) {
		t.Error("tile 1,0 survived removal of its placement")
	}
	if got := sheet.NRGBAAt(0, 40); got != red {
		t.Errorf("pixel of untouched placement = %v, want red", got)
	}
}
