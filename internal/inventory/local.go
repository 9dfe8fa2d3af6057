package inventory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/karrick/godirwalk"

	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/syncerr"
)

// millisPerNano is the divisor to convert a ModTime's nanosecond precision
// down to the millisecond precision the spec's Object.LastModified uses.
const millisPerNano = int64(time.Millisecond)

// Local recursively enumerates dir into an Inventory keyed by id, a
// forward-slash path relative to dir (spec §4.2). Symlinks are never
// followed. dir must exist and be a directory, or ErrNotADirectory is
// returned. Hidden files are included; empty directories contribute no
// entries.
func Local(dir string, logger *slog.Logger) (Inventory, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("inventory: %s: %w", dir, syncerr.ErrNotADirectory)
	}

	inv := make(Inventory)

	walkErr := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if osPathname == dir {
				return nil
			}

			// Never follow symlinks: treat them as leaves to skip, not
			// directories to descend into and not files to read.
			if de.IsSymlink() {
				if de.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if de.IsDir() {
				return nil
			}

			rel, relErr := filepath.Rel(dir, osPathname)
			if relErr != nil {
				return fmt.Errorf("inventory: relativizing %s: %w", osPathname, relErr)
			}

			fi, statErr := os.Lstat(osPathname)
			if statErr != nil {
				return fmt.Errorf("inventory: stat %s: %w: %w", osPathname, syncerr.ErrFilesystemError, statErr)
			}

			id := filepath.ToSlash(rel)
			inv[id] = object.Object{
				ID:           id,
				Size:         fi.Size(),
				LastModified: fi.ModTime().UnixNano() / millisPerNano,
				LocalPath:    osPathname,
			}

			return nil
		},
	})
	if walkErr != nil {
		logger.Error("inventory: local walk failed", slog.String("dir", dir), slog.String("error", walkErr.Error()))
		return nil, fmt.Errorf("inventory: walking %s: %w: %w", dir, syncerr.ErrFilesystemError, walkErr)
	}

	logger.Debug("inventory: local enumeration complete", slog.String("dir", dir), slog.Int("count", len(inv)))

	return inv, nil
}
