// Package cache provides a small generic LRU cache.
//
// The cache holds decoded source images keyed by their absolute path so a
// sheet that reuses the same sprite many times decodes it once:
//
//	c := cache.New[string, *image.NRGBA](128)
//	img, err := c.GetOrLoad(path, decode)
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
