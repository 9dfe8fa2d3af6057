package syncengine

import (
	"fmt"
	"path/filepath"

	"github.com/jeanbmar/s3sync/internal/diff"
	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/syncerr"
	"github.com/jeanbmar/s3sync/internal/transfer"
)

// Plan is the output of translating a diff result into dispatchable
// commands (spec §4.5 steps 1-4), returned as-is under DryRun.
type Plan struct {
	Commands []transfer.Command
	Diff     diff.Result
}

// effectiveRelocations appends a fallback rule rewriting defaultSourcePrefix
// to defaultTargetPrefix after the caller's own rules, so an explicit
// relocation always takes priority (first-match-wins) and callers who pass
// no relocations still get sensible prefix handling between a bucket
// prefix and a local directory's relative id space.
func effectiveRelocations(opts Options, defaultSourcePrefix, defaultTargetPrefix string) object.Rules {
	rules := make(object.Rules, 0, len(opts.Relocations)+1)
	rules = append(rules, opts.Relocations...)
	rules = append(rules, object.Rule{SourcePrefix: defaultSourcePrefix, TargetPrefix: defaultTargetPrefix})

	return rules
}

func applyFilters(inv inventory.Inventory, opts Options) inventory.Inventory {
	if len(opts.Filters) == 0 {
		return inv
	}

	return inv.Filter(opts.keep)
}

// derivedInput starts from an empty store input (the source object is not
// consulted), then merges opts.CommandInput overrides in (spec §4.6's
// "per-command input transformation").
func derivedInput(opts Options, _ object.Object) transfer.DerivedInput {
	return opts.CommandInput.Apply(transfer.DerivedInput{})
}

// buildUploadCommands translates a diff.Result into Upload/Delete commands
// for a bucketWithLocal sync (local source, bucket target).
func buildUploadCommands(res diff.Result, opts Options, rules object.Rules, targetBucket string) []transfer.Command {
	cmds := make([]transfer.Command, 0, len(res.Created)+len(res.Updated)+len(res.Deleted))

	for _, group := range [][]object.Object{res.Created, res.Updated} {
		for _, src := range group {
			cmds = append(cmds, transfer.Command{
				Variant:      transfer.Upload,
				LocalPath:    src.LocalPath,
				TargetBucket: targetBucket,
				TargetKey:    rules.Apply(src.ID),
				Size:         src.Size,
				Input:        derivedInput(opts, src),
			})
		}
	}

	if opts.Del {
		for _, tgt := range res.Deleted {
			cmds = append(cmds, transfer.Command{Variant: transfer.Delete, TargetBucket: targetBucket, TargetKey: tgt.ID})
		}
	}

	return cmds
}

// buildDownloadCommands translates a diff.Result into Download/LocalDelete
// commands for a localWithBucket sync (bucket source, local target).
// localDir and flatten control how a target id becomes a filesystem path;
// seen tracks basenames already assigned under flatten for collision
// detection across the whole command list.
func buildDownloadCommands(
	res diff.Result, opts Options, rules object.Rules, sourceBucket, localDir string, seen map[string]string,
) ([]transfer.Command, error) {
	cmds := make([]transfer.Command, 0, len(res.Created)+len(res.Updated)+len(res.Deleted))

	for _, group := range [][]object.Object{res.Created, res.Updated} {
		for _, src := range group {
			targetID := rules.Apply(src.ID)

			localPath, err := flattenPath(localDir, targetID, opts.Flatten, seen)
			if err != nil {
				return nil, err
			}

			cmds = append(cmds, transfer.Command{
				Variant:      transfer.Download,
				SourceBucket: sourceBucket,
				SourceKey:    src.ID,
				LocalPath:    localPath,
				Size:         src.Size,
				Input:        derivedInput(opts, src),
			})
		}
	}

	if opts.Del {
		for _, tgt := range res.Deleted {
			cmds = append(cmds, transfer.Command{Variant: transfer.LocalDelete, LocalPath: tgt.LocalPath})
		}
	}

	return cmds, nil
}

// buildCopyCommands translates a diff.Result into server-side Copy/Delete
// commands for a bucketWithBucket sync.
func buildCopyCommands(res diff.Result, opts Options, rules object.Rules, srcBucket, dstBucket string) []transfer.Command {
	cmds := make([]transfer.Command, 0, len(res.Created)+len(res.Updated)+len(res.Deleted))

	for _, group := range [][]object.Object{res.Created, res.Updated} {
		for _, src := range group {
			cmds = append(cmds, transfer.Command{
				Variant:      transfer.Copy,
				SourceBucket: srcBucket,
				SourceKey:    src.ID,
				TargetBucket: dstBucket,
				TargetKey:    rules.Apply(src.ID),
				Size:         src.Size,
				Input:        derivedInput(opts, src),
			})
		}
	}

	if opts.Del {
		for _, tgt := range res.Deleted {
			cmds = append(cmds, transfer.Command{Variant: transfer.Delete, TargetBucket: dstBucket, TargetKey: tgt.ID})
		}
	}

	return cmds
}

// flattenPath returns the basename of targetID, erroring on collision
// against seen. When flatten is false, path preserves the full relative
// structure under localDir.
func flattenPath(localDir, targetID string, flatten bool, seen map[string]string) (string, error) {
	if !flatten {
		return filepath.Join(localDir, filepath.FromSlash(targetID)), nil
	}

	base := filepath.Base(targetID)

	if existing, ok := seen[base]; ok && existing != targetID {
		return "", fmt.Errorf("flatten: %q and %q both map to basename %q: %w", existing, targetID, base, syncerr.ErrPathCollision)
	}

	seen[base] = targetID

	return filepath.Join(localDir, base), nil
}
