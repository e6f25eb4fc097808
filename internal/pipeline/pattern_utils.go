package pipeline

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

func (c *Config) getIsMatch(pattern string, path string) bool {
	combined := pattern + "\x00" + path

	if hit, isCached := cache.matchResults.Load(combined); isCached {
		return hit
	}

	matches, err := doublestar.Match(filepath.ToSlash(pattern), filepath.ToSlash(path))
	if err != nil {
		c.logger().Errorf("error: failed to match file: %v", err)
		return false
	}

	actualValue, _ := cache.matchResults.LoadOrStore(combined, matches)
	return actualValue
}

func (c *Config) getIsIgnored(path string, ignoredPatterns []string) bool {
	for _, pattern := range ignoredPatterns {
		if c.getIsMatch(pattern, path) {
			return true
		}
	}
	return false
}
