// Package config loads tilesheet settings from the environment.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings shared by the CLI commands. Command-line flags
// override these values.
type Config struct {
	TileSize    int    `env:"TILESHEET_TILE_SIZE" envDefault:"16"`
	Rows        int    `env:"TILESHEET_ROWS" envDefault:"50"`
	Cols        int    `env:"TILESHEET_COLS" envDefault:"50"`
	CacheSize   int    `env:"TILESHEET_CACHE_SIZE" envDefault:"128"`
	PreviewSize int    `env:"TILESHEET_PREVIEW_SIZE" envDefault:"64"`
	Placeholder string `env:"TILESHEET_PLACEHOLDER_COLOR" envDefault:"#ff00ff"`
	LogLevel    string `env:"TILESHEET_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"TILESHEET_LOG_FORMAT" envDefault:"text"`
	LogFile     string `env:"TILESHEET_LOG_FILE"`
}

// Load reads an optional dotenv file and then parses the environment.
// A missing dotenv file is not an error. Pass an empty path to skip it.
func Load(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("config: tile size must be positive, got %d", c.TileSize)
	case c.Rows <= 0 || c.Cols <= 0:
		return fmt.Errorf("config: grid must be at least 1x1, got %dx%d", c.Cols, c.Rows)
	case c.PreviewSize <= 0:
		return fmt.Errorf("config: preview size must be positive, got %d", c.PreviewSize)
	}
	if _, err := ParseColor(c.Placeholder); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// PlaceholderColor returns the parsed placeholder color.
func (c Config) PlaceholderColor() color.NRGBA {
	col, err := ParseColor(c.Placeholder)
	if err != nil {
		return color.NRGBA{R: 255, B: 255, A: 255}
	}
	return col
}

// ParseColor parses "#rrggbb", "#rrggbbaa" or "r,g,b,a" (0-255 components).
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return color.NRGBA{}, fmt.Errorf("config: invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("config: invalid hex color %q: %w", s, err)
		}
		if len(hex) == 6 {
			v = v<<8 | 0xff
		}
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("config: color %q must have 4 components", s)
	}
	var c [4]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("config: color component %q: %w", p, err)
		}
		c[i] = uint8(n)
	}
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", s)
	}
	return l, nil
}
