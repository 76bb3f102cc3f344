package tilesheet

import "errors"

// Grid errors.
var (
	// ErrOverlap is returned when a placement footprint intersects an
	// occupied tile. The grid is left unchanged.
	ErrOverlap = errors.New("tilesheet: placement overlaps an occupied tile")

	// ErrNotFound is returned when removing or rendering an empty tile.
	ErrNotFound = errors.New("tilesheet: tile is not occupied")

	// ErrOutOfBounds is returned when a footprint extends past the grid.
	ErrOutOfBounds = errors.New("tilesheet: placement is outside the grid")

	// ErrInvalidRotation is returned for rotations that are not a multiple of 90.
	ErrInvalidRotation = errors.New("tilesheet: rotation must be a multiple of 90 degrees")

	// ErrInvalidSource is returned for sources without a name or with
	// non-positive dimensions.
	ErrInvalidSource = errors.New("tilesheet: invalid source image")
)

// Rendering and persistence errors.
var (
	// ErrUnresolved is returned when a source basename has no known path or
	// cannot be decoded. It is non-fatal: a placeholder is drawn instead.
	ErrUnresolved = errors.New("tilesheet: source image cannot be resolved")

	// ErrPersistence wraps filesystem failures during save and load.
	ErrPersistence = errors.New("tilesheet: persistence failure")

	// ErrCorrupt is returned when metadata cannot be decoded or describes an
	// impossible grid.
	ErrCorrupt = errors.New("tilesheet: corrupt metadata")

	// ErrNoSelection is returned when placing without a selected source.
	ErrNoSelection = errors.New("tilesheet: no source image selected")
)
