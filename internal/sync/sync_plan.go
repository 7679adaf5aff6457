package sync

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// TreeState is a snapshot of one directory tree: regular files keyed by
// slash-separated relative path, the set of subdirectories, and the set of
// non-regular entries (symlinks, sockets, device nodes).
type TreeState struct {
	Root     string
	Files    map[string]*FileMetadata
	Dirs     mapset.Set[string]
	Specials mapset.Set[string]
}

// walkTree snapshots the tree rooted at root. A missing root yields an empty
// state. When excludes is non-nil, matching entries (and everything below a
// matching directory) are left out of the snapshot. Non-regular files are
// never copied and land in Specials; in a destination snapshot they are
// strays to be deleted.
func walkTree(root string, excludes *ExcludeList) (*TreeState, error) {
	state := &TreeState{
		Root:     root,
		Files:    make(map[string]*FileMetadata),
		Dirs:     mapset.NewThreadUnsafeSet[string](),
		Specials: mapset.NewThreadUnsafeSet[string](),
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return state, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if excludes != nil && excludes.ShouldExclude(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			state.Dirs.Add(rel)
			return nil
		}
		if !d.Type().IsRegular() {
			slog.Debug("non-regular file", "path", path, "mode", d.Type())
			state.Specials.Add(rel)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		state.Files[rel] = NewFileMetadata(path, rel, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Plan is the set of operations that makes dest's content identical to
// source's, minus exclusions.
type Plan struct {
	Creates []*SyncOperation
	Updates []*SyncOperation
	Deletes []*SyncOperation

	// Unchanged counts files that need no write at all.
	Unchanged int

	// MissingDirs are source directories absent from dest, shallowest first.
	// StaleDirs are dest directories absent from source, deepest first.
	MissingDirs []string
	StaleDirs   []string
}

func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0 &&
		len(p.MissingDirs) == 0 && len(p.StaleDirs) == 0
}

// BuildPlan diffs two tree snapshots. Files present in both trees are
// compared by size first, then by MD5 content hash, so an unchanged file is
// provably left untouched regardless of filesystem timestamp resolution.
func BuildPlan(src, dst *TreeState) (*Plan, error) {
	plan := &Plan{}

	srcPaths := mapset.NewThreadUnsafeSet[string]()
	for path := range src.Files {
		srcPaths.Add(path)
	}
	dstPaths := mapset.NewThreadUnsafeSet[string]()
	for path := range dst.Files {
		dstPaths.Add(path)
	}

	for _, path := range sortedSlice(srcPaths.Difference(dstPaths)) {
		plan.Creates = append(plan.Creates, &SyncOperation{
			Op:      OpCreate,
			RelPath: path,
			Source:  src.Files[path],
		})
	}

	// Anything only in dest gets removed. Excluded entries never make it
	// into the source snapshot, so stray copies of them land here too.
	// Non-regular dest entries are never copied from source, so every one
	// of them is a stray. Dest is nil for those.
	deletePaths := dstPaths.Difference(srcPaths).Union(dst.Specials)
	for _, path := range sortedSlice(deletePaths) {
		plan.Deletes = append(plan.Deletes, &SyncOperation{
			Op:      OpDelete,
			RelPath: path,
			Dest:    dst.Files[path],
		})
	}

	for _, path := range sortedSlice(srcPaths.Intersect(dstPaths)) {
		source, dest := src.Files[path], dst.Files[path]
		modified, err := hasModified(source, dest)
		if err != nil {
			return nil, err
		}
		if modified {
			plan.Updates = append(plan.Updates, &SyncOperation{
				Op:      OpUpdate,
				RelPath: path,
				Source:  source,
				Dest:    dest,
			})
		} else {
			plan.Unchanged++
		}
	}

	plan.MissingDirs = sortedSlice(src.Dirs.Difference(dst.Dirs))
	plan.StaleDirs = sortedSlice(dst.Dirs.Difference(src.Dirs))
	// delete children before their parents
	sort.Sort(sort.Reverse(sort.StringSlice(plan.StaleDirs)))

	return plan, nil
}

func hasModified(src, dst *FileMetadata) (bool, error) {
	if src.Size != dst.Size {
		return true, nil
	}

	srcTag, err := src.ETag()
	if err != nil {
		return false, err
	}
	dstTag, err := dst.ETag()
	if err != nil {
		return false, err
	}
	return srcTag != dstTag, nil
}

func sortedSlice(set mapset.Set[string]) []string {
	paths := set.ToSlice()
	slices.Sort(paths)
	return paths
}
