package tilesheet

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/tilesheet/internal/cache"
)

// DefaultCacheSize is the number of decoded sources a SourceLoader keeps.
const DefaultCacheSize = 128

// SourceLoader decodes source images from disk and keeps recently used
// ones in memory, keyed by path.
type SourceLoader struct {
	images *cache.Cache[string, *image.NRGBA]
}

// NewSourceLoader creates a loader caching up to size decoded images.
// A size of 0 or less selects DefaultCacheSize.
func NewSourceLoader(size int) *SourceLoader {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &SourceLoader{images: cache.New[string, *image.NRGBA](size)}
}

// Load returns the decoded image at path.
func (l *SourceLoader) Load(path string) (*image.NRGBA, error) {
	return l.images.GetOrLoad(filepath.Clean(path), func() (*image.NRGBA, error) {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("tilesheet: load source %s: %w", path, err)
		}
		Logger().Debug("tilesheet: decoded source", "path", path,
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		return imaging.Clone(img), nil
	})
}

// Source returns the Source description of the image at path, reading only
// the image header unless the image is already cached.
func (l *SourceLoader) Source(path string) (Source, error) {
	if img, ok := l.images.Get(filepath.Clean(path)); ok {
		return Source{Name: BaseName(path), Width: img.Rect.Dx(), Height: img.Rect.Dy()}, nil
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Source{}, fmt.Errorf("tilesheet: open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Source{}, fmt.Errorf("tilesheet: read source header %s: %w", path, err)
	}
	return Source{Name: BaseName(path), Width: cfg.Width, Height: cfg.Height}, nil
}

// Forget drops path from the cache, e.g. after the file changed on disk.
func (l *SourceLoader) Forget(path string) {
	l.images.Delete(filepath.Clean(path))
}

// Stats returns cache statistics.
func (l *SourceLoader) Stats() cache.Stats {
	return l.images.Stats()
}
