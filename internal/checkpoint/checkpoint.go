// Package checkpoint writes per-epoch training checkpoints and prunes the
// ones that are no longer wanted.
package checkpoint

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"dnabert-go/internal/logging"
)

const (
	OptimizerFile = "optimizer.pt"
	SchedulerFile = "scheduler.pt"
)

// Model writes its weights and config into dir.
type Model interface {
	SavePretrained(dir string) error
}

// StateSaver serializes optimizer or scheduler state.
type StateSaver interface {
	SaveState(w io.Writer) error
}

// JSONState saves V as JSON. It suits optimizers whose state is plain data.
type JSONState struct {
	V any
}

func (s JSONState) SaveState(w io.Writer) error {
	return json.NewEncoder(w).Encode(s.V)
}

type SaveRequest struct {
	Model     Model
	Optimizer StateSaver
	Scheduler StateSaver
	OutputDir string
	Epoch     int
	// SaveAt lists epochs whose checkpoints survive pruning.
	SaveAt []int
	Logger *log.Logger
}

type File struct {
	Name string
	Size int64
}

type Result struct {
	Dir     string
	Files   []File
	Removed []string
	// PruneErr collects failures to delete old checkpoints. The new
	// checkpoint is complete even when it is set.
	PruneErr error
}

// DirName is the directory name used for epoch.
func DirName(epoch int) string {
	return "epoch_" + itoa(epoch)
}

// Save writes <OutputDir>/epoch_<Epoch>/ with the model files, optimizer.pt
// and scheduler.pt, then removes every other epoch directory not in SaveAt.
func Save(req SaveRequest) (Result, error) {
	logger := logging.OrDiscard(req.Logger)
	if req.Model == nil || req.Optimizer == nil || req.Scheduler == nil {
		return Result{}, errors.New("checkpoint: model, optimizer and scheduler are required")
	}
	dir := filepath.Join(req.OutputDir, DirName(req.Epoch))
	logger.Printf("SAVING MODEL, CHECKPOINT DIR: %s", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, errors.Wrapf(err, "create %s", dir)
	}
	if err := req.Model.SavePretrained(dir); err != nil {
		return Result{}, errors.Wrapf(err, "save model to %s", dir)
	}

	res := Result{Dir: dir}
	for _, st := range []struct {
		name  string
		saver StateSaver
	}{
		{OptimizerFile, req.Optimizer},
		{SchedulerFile, req.Scheduler},
	} {
		size, err := writeState(filepath.Join(dir, st.name), st.saver)
		if err != nil {
			return Result{}, err
		}
		logger.Printf("wrote %s (%s)", st.name, humanize.Bytes(uint64(size)))
		res.Files = append(res.Files, File{Name: st.name, Size: size})
	}

	removed, err := Prune(req.OutputDir, req.Epoch, req.SaveAt)
	res.Removed = removed
	for _, r := range removed {
		logger.Printf("removed checkpoint %s", r)
	}
	if err != nil {
		logger.Printf("prune %s: %v", req.OutputDir, err)
		res.PruneErr = err
	}
	return res, nil
}

func writeState(path string, s StateSaver) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, errors.Wrapf(err, "create temp for %s", path)
	}
	defer os.Remove(tmp.Name())
	if err := s.SaveState(tmp); err != nil {
		tmp.Close()
		return 0, errors.Wrapf(err, "serialize %s", filepath.Base(path))
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, errors.Wrapf(err, "stat %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, errors.Wrapf(err, "rename to %s", path)
	}
	return info.Size(), nil
}
