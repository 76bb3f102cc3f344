// Command tilesheet composes tile sheets from a directory of sprites.
//
// Usage:
//
//	tilesheet open <dir> <name>       edit <dir>/<name>.png interactively
//	tilesheet darken <in> <out>       tint every opaque pixel of an image
//
// Settings are read from the environment (TILESHEET_*) and from an
// optional .env file; flags override them.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/tilesheet"
	"github.com/gogpu/tilesheet/internal/config"
)

const desc = `Composes sprite images into a fixed-grid tile sheet with JSON metadata.`

// CLI is the command-line grammar.
type CLI struct {
	Env      string `default:".env" help:"Dotenv file read before the environment." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error). Overrides TILESHEET_LOG_LEVEL."`

	Open   OpenCmd   `cmd:"" help:"Open a sheet for editing."`
	Darken DarkenCmd `cmd:"" help:"Composite a tint over every opaque pixel of an image."`
}

// OpenCmd opens an editing session.
type OpenCmd struct {
	Dir  string `arg:"" type:"existingdir" help:"Directory with source images; the sheet is stored here."`
	Name string `arg:"" help:"Sheet name, without extension."`

	TileSize int  `help:"Tile size in pixels for a new sheet."`
	Rows     int  `help:"Rows of a new sheet."`
	Cols     int  `help:"Columns of a new sheet."`
	NoSave   bool `help:"Do not save when the session ends."`
}

// DarkenCmd runs the darken filter.
type DarkenCmd struct {
	In   string `arg:"" type:"existingfile" help:"Input image."`
	Out  string `arg:"" help:"Output image; the format follows the extension."`
	Tint string `default:"0,0,0,128" help:"Tint color as r,g,b,a or #rrggbbaa."`
}

// app carries what every command needs.
type app struct {
	cfg config.Config
	in  io.Reader
	out io.Writer
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tilesheet"),
		kong.Description(desc),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Env)
	ctx.FatalIfErrorf(err)
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	logger, closer, err := newLogger(cfg, os.Stderr)
	ctx.FatalIfErrorf(err)
	defer func() { _ = closer.Close() }()
	tilesheet.SetLogger(logger)

	err = ctx.Run(&app{cfg: cfg, in: os.Stdin, out: os.Stdout})
	if err != nil {
		logger.Error("command failed", "command", ctx.Command(), "err", err)
		_ = closer.Close()
		ctx.Exit(1)
	}
}

// Run opens the session and reads editing commands until quit or EOF.
func (c *OpenCmd) Run(a *app) error {
	opts := tilesheet.Options{
		TileSize:    pick(c.TileSize, a.cfg.TileSize),
		Rows:        pick(c.Rows, a.cfg.Rows),
		Cols:        pick(c.Cols, a.cfg.Cols),
		CacheSize:   a.cfg.CacheSize,
		PreviewSize: a.cfg.PreviewSize,
		Placeholder: a.cfg.PlaceholderColor(),
	}
	s, err := tilesheet.Open(c.Dir, c.Name, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %dx%d tiles of %dpx, %d sources, %d tiles used\n",
		s.Name, s.Grid.Cols(), s.Grid.Rows(), s.Grid.TileSize(), s.Names.Len(), s.Grid.Len())

	r := &repl{s: s, out: a.out}
	if err := r.run(a.in); err != nil {
		return err
	}
	if c.NoSave {
		return nil
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s\n", s.ImagePath)
	return nil
}

// Run applies the tint.
func (c *DarkenCmd) Run(a *app) error {
	tint, err := config.ParseColor(c.Tint)
	if err != nil {
		return err
	}
	if err := tilesheet.DarkenFile(c.In, c.Out, tint); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", c.Out)
	return nil
}

func pick(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the process logger from cfg. Records go to w, or to a
// size-rotated file when LogFile is set.
func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), closer, nil
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
}
