package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Discover enumerates every file under root whose name ends in suffix,
// walking the tree recursively. The returned order is the walk order and
// is not guaranteed stable across platforms; the aggregator must not
// depend on it. A nonexistent or unreadable root wraps ErrDiscovery.
func Discover(root, suffix string, logger *slog.Logger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot access input directory %q: %w", ErrDiscovery, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %q is not a directory", ErrDiscovery, root)
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: cannot read input directory %q: %w", ErrDiscovery, root, err)
			}
			// Unreadable subtrees are logged and skipped rather than
			// aborting the whole run.
			logger.Warn("Skipping unreadable path during discovery",
				slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	logger.Info("Discovery complete",
		slog.String("root", root),
		slog.String("suffix", suffix),
		slog.Int("count", len(files)))
	return files, nil
}
