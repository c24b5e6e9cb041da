package checkpoint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

type Entry struct {
	Epoch int
	Dir   string
	Size  int64
}

func itoa(n int) string { return strconv.Itoa(n) }

// ParseDirName returns the epoch encoded in an epoch_<N> name.
func ParseDirName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "epoch_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// sizeOf computes the on-disk size of a checkpoint directory.
var sizeOf = dirSize

// epochDirs returns the epoch checkpoint directories in outputDir, sorted by
// epoch, without touching their contents.
func epochDirs(outputDir string) ([]Entry, error) {
	des, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "list %s", outputDir)
	}
	var out []Entry
	for _, de := range des {
		if !de.IsDir() {
			continue
		}
		epoch, ok := ParseDirName(de.Name())
		if !ok {
			continue
		}
		out = append(out, Entry{Epoch: epoch, Dir: filepath.Join(outputDir, de.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Epoch < out[j].Epoch })
	return out, nil
}

// List returns the epoch checkpoint directories in outputDir, sorted by epoch,
// with their sizes. Other files and directories are ignored.
func List(outputDir string) ([]Entry, error) {
	out, err := epochDirs(outputDir)
	if err != nil {
		return nil, err
	}
	for i := range out {
		size, err := sizeOf(out[i].Dir)
		if err != nil {
			return nil, err
		}
		out[i].Size = size
	}
	return out, nil
}

// Latest returns the checkpoint with the highest epoch. Its Size is not set.
func Latest(outputDir string) (Entry, bool, error) {
	entries, err := epochDirs(outputDir)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

// Prune deletes every epoch directory in outputDir other than keepEpoch and
// those listed in saveAt. A failed deletion does not stop the others; all
// failures are returned joined together with the directories that were removed.
func Prune(outputDir string, keepEpoch int, saveAt []int) ([]string, error) {
	entries, err := epochDirs(outputDir)
	if err != nil {
		return nil, err
	}
	keep := map[int]bool{keepEpoch: true}
	for _, e := range saveAt {
		keep[e] = true
	}
	var (
		removed []string
		errs    []error
	)
	for _, e := range entries {
		if keep[e.Epoch] {
			continue
		}
		if err := os.RemoveAll(e.Dir); err != nil {
			errs = append(errs, pkgerrors.Wrapf(err, "remove %s", e.Dir))
			continue
		}
		removed = append(removed, e.Dir)
	}
	return removed, errors.Join(errs...)
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "size of %s", dir)
	}
	return total, nil
}
