// Package tilesheet assembles sprite sheets from individual source images.
//
// # Overview
//
// A sheet is a fixed grid of square tiles. Source images are placed on the
// grid by their top-left tile; an image larger than one tile covers a
// rectangular footprint of tiles. The [Grid] tracks which tile belongs to
// which placement, the [Projector] renders placements into a [Sheet], and
// [Save] / [Load] persist both the composite PNG and the placement metadata
// needed to edit the sheet again later.
//
// # Quick Start
//
//	s, err := tilesheet.Open("assets/tiles", "terrain", tilesheet.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	s.Select("grass.png")
//	s.Rotate()
//	if _, err := s.PlaceSelected(tilesheet.Coord{Col: 2, Row: 0}); err != nil {
//		log.Print(err)
//	}
//	if err := s.Save(); err != nil {
//		log.Fatal(err)
//	}
//
// # Anchors and Dependents
//
// Each occupied tile holds an [Entry]. The top-left tile of a placement is
// its anchor: it records the rotated pixel size and the coordinates of every
// other tile in the footprint. Those other tiles are dependents and only
// record the coordinate of their anchor. Removing any tile of a placement
// removes the whole footprint.
//
// # Source Identity
//
// Placements refer to sources by basename, not path. A [NameTable] built by
// [Scan] resolves basenames to files at render time, so a sheet survives the
// source directory being reorganized. A basename that no longer resolves is
// drawn as a solid placeholder instead of failing the render.
//
// # Concurrency
//
// Grid, Projector and Session are not safe for concurrent use. Callers that
// expose them as a service must serialize mutations themselves.
package tilesheet
