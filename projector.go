package tilesheet

import (
	"fmt"
	"image"
	"image/color"
)

// DefaultPlaceholder is the color drawn over placements whose source image
// cannot be resolved.
var DefaultPlaceholder = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// Projector renders grid placements into a Sheet.
//
// Projector is not safe for concurrent use, and the NameTable it reads
// must not be rebuilt while a render is in progress.
type Projector struct {
	Grid        *Grid
	Names       *NameTable
	Loader      *SourceLoader
	Placeholder color.NRGBA
}

// NewProjector returns a projector for g that resolves sources through names.
// A nil loader gets a default SourceLoader.
func NewProjector(g *Grid, names *NameTable, loader *SourceLoader) *Projector {
	if loader == nil {
		loader = NewSourceLoader(0)
	}
	return &Projector{
		Grid:        g,
		Names:       names,
		Loader:      loader,
		Placeholder: DefaultPlaceholder,
	}
}

// RenderCell draws the placement anchored at pos.
//
// Empty tiles and dependent tiles are skipped; dependents are drawn as part
// of their anchor. When the source cannot be resolved or decoded, the
// anchor footprint is filled with the placeholder color and an error
// wrapping ErrUnresolved is returned. That error is a diagnostic: the
// sheet is still in a consistent state.
func (p *Projector) RenderCell(pos Coord, sheet *Sheet) error {
	e, ok := p.Grid.entries[pos]
	if !ok || e.Role != RoleAnchor {
		return nil
	}
	rect := e.PixelRect(p.Grid.tileSize)

	path, ok := p.Names.Resolve(e.Source)
	if !ok {
		return p.placeholder(e, rect, sheet, fmt.Errorf("%w: %q has no known path", ErrUnresolved, e.Source))
	}
	src, err := p.Loader.Load(path)
	if err != nil {
		return p.placeholder(e, rect, sheet, fmt.Errorf("%w: %w", ErrUnresolved, err))
	}
	img, desc, err := ApplyTransform(src, e.Transform)
	if err != nil {
		return p.placeholder(e, rect, sheet, fmt.Errorf("%w: %w", ErrUnresolved, err))
	}

	if b := img.Bounds(); b.Dx() != e.Width || b.Dy() != e.Height {
		Logger().Warn("tilesheet: source size changed since placement",
			"tile", pos, "source", e.Source,
			"placed", fmt.Sprintf("%dx%d", e.Width, e.Height),
			"now", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	}
	sheet.Paste(img, rect)
	Logger().Debug("tilesheet: rendered placement", "tile", pos, "source", e.Source, "transform", desc)
	return nil
}

func (p *Projector) placeholder(e Entry, rect image.Rectangle, sheet *Sheet, err error) error {
	sheet.FillRect(rect, p.Placeholder)
	Logger().Warn("tilesheet: drawing placeholder", "tile", e.Pos, "source", e.Source, "err", err)
	return err
}

// RenderReport summarizes a full render.
type RenderReport struct {
	Rendered   int
	Unresolved []Coord
}

// RenderAll draws every placement of the grid, in row-major order.
// Unresolvable sources are replaced by placeholders and listed in the
// report; they never stop the remaining placements from rendering.
func (p *Projector) RenderAll(sheet *Sheet) RenderReport {
	var rep RenderReport
	for _, a := range p.Grid.Anchors() {
		if err := p.RenderCell(a.Pos, sheet); err != nil {
			rep.Unresolved = append(rep.Unresolved, a.Pos)
			continue
		}
		rep.Rendered++
	}
	return rep
}

// EraseCell clears the full pixel rectangle of a removed anchor.
func (p *Projector) EraseCell(anchor Entry, sheet *Sheet) {
	sheet.Clear(anchor.PixelRect(p.Grid.tileSize))
}

// EraseRemoved clears the pixels of a removal. An orphaned dependent has
// no anchor size, so only its own tiles are cleared.
func (p *Projector) EraseRemoved(res RemoveResult, sheet *Sheet) {
	if !res.Orphaned() {
		p.EraseCell(res.Anchor, sheet)
		return
	}
	ts := p.Grid.tileSize
	for _, c := range res.Cells {
		sheet.Clear(image.Rect(c.Col*ts, c.Row*ts, (c.Col+1)*ts, (c.Row+1)*ts))
	}
}
