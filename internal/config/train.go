// Package config holds the training configuration, the loose option bag and
// the small string parsers used by the command line tools.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

const (
	DefaultMLMProbability = 0.15
	DefaultChunkWidth     = 512
	DefaultKmer           = 6
	DefaultEMABeta        = 0.98
)

// Train is the typed training configuration.
type Train struct {
	OutputDir      string  `json:"output_dir"`
	Epochs         int     `json:"epochs"`
	SaveAt         []int   `json:"-"`
	MLMProbability float64 `json:"mlm_probability"`
	ChunkWidth     int     `json:"chunk_width"`
	ChunkOverlap   int     `json:"chunk_overlap"`
	Kmer           int     `json:"kmer"`
	EMABeta        float64 `json:"ema_beta"`
	NumWorkers     int     `json:"num_workers"`
	Seed           int64   `json:"seed"`
	Extra          Params  `json:"extra,omitempty"`
}

type trainFile struct {
	Train
	SaveAt []string `json:"save_at"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Train {
	return Train{
		OutputDir:      "checkpoints",
		Epochs:         1,
		MLMProbability: DefaultMLMProbability,
		ChunkWidth:     DefaultChunkWidth,
		Kmer:           DefaultKmer,
		EMABeta:        DefaultEMABeta,
		NumWorkers:     1,
		Extra:          Params{},
	}
}

// Load reads a JSON configuration on top of Defaults, applies DNABERT_*
// environment overrides and validates the result.
func Load(path string) (Train, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Train{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Train{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Parse(b []byte) (Train, error) {
	f := trainFile{Train: Defaults()}
	if err := json.Unmarshal(b, &f); err != nil {
		return Train{}, errors.Wrap(err, "decode json")
	}
	cfg := f.Train
	if len(f.SaveAt) > 0 {
		saveAt, err := ParseRangeList(f.SaveAt)
		if err != nil {
			return Train{}, errors.Wrap(err, "save_at")
		}
		cfg.SaveAt = saveAt
	}
	if cfg.Extra == nil {
		cfg.Extra = Params{}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Train{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Unparseable values are ignored.
func (c *Train) ApplyEnv() {
	c.OutputDir = envString("DNABERT_OUTPUT_DIR", c.OutputDir)
	c.MLMProbability = envFloat("DNABERT_MLM_PROBABILITY", c.MLMProbability)
	c.NumWorkers = envInt("DNABERT_NUM_WORKERS", c.NumWorkers)
	c.Seed = envInt64("DNABERT_SEED", c.Seed)
}

func (c Train) Validate() error {
	switch {
	case c.MLMProbability < 0 || c.MLMProbability > 1:
		return errors.Errorf("mlm_probability %v outside [0, 1]", c.MLMProbability)
	case c.ChunkWidth < 1:
		return errors.Errorf("chunk_width must be >= 1, got %d", c.ChunkWidth)
	case c.ChunkOverlap < 0:
		return errors.Errorf("chunk_overlap must be >= 0, got %d", c.ChunkOverlap)
	case c.Kmer < 1:
		return errors.Errorf("kmer must be >= 1, got %d", c.Kmer)
	case c.EMABeta <= 0 || c.EMABeta >= 1:
		return errors.Errorf("ema_beta %v outside (0, 1)", c.EMABeta)
	case c.NumWorkers < 1:
		return errors.Errorf("num_workers must be >= 1, got %d", c.NumWorkers)
	case c.Epochs < 0:
		return errors.Errorf("epochs must be >= 0, got %d", c.Epochs)
	}
	return nil
}

// KeepEpoch reports whether epoch is listed in SaveAt.
func (c Train) KeepEpoch(epoch int) bool {
	for _, e := range c.SaveAt {
		if e == epoch {
			return true
		}
	}
	return false
}
