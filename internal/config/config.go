package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/drawrun/internal/domain"
)

// CriticalPolicy selects how the critical-number set evolves between
// learning steps.
type CriticalPolicy string

const (
	// CriticalClearReplace drops the previous critical set on every step and
	// replaces it with the newest mismatch.
	CriticalClearReplace CriticalPolicy = "clear_replace"
	// CriticalAccumulateDecay keeps prior critical numbers alive with a
	// decaying weight instead of clearing them.
	CriticalAccumulateDecay CriticalPolicy = "accumulate_decay"
)

// Config holds every tunable of a prediction run. All scoring multipliers
// are deliberately configuration, not constants: their best values shift
// across historical windows.
type Config struct {
	Weights  WeightsConfig  `yaml:"weights"`
	Recency  RecencyConfig  `yaml:"recency"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Ensemble EnsembleConfig `yaml:"ensemble"`
	Output   OutputConfig   `yaml:"output"`
}

// WeightsConfig bounds the learned weight model.
type WeightsConfig struct {
	Cap             float64        `yaml:"cap"`              // upper clamp for per-number weights
	SingleBoost     float64        `yaml:"single_boost"`     // per-number increment on reveal
	PairIncrement   float64        `yaml:"pair_increment"`   // co-occurrence learning rate for pairs
	TripleIncrement float64        `yaml:"triple_increment"` // co-occurrence learning rate for triplets
	MaxTriples      int            `yaml:"max_triples"`      // prune triplet table to this many entries, 0 = unbounded
	DecayRate       float64        `yaml:"decay_rate"`       // 0 disables decay
	DecayCadence    int            `yaml:"decay_cadence"`    // apply decay every N learning steps
	CriticalPolicy  CriticalPolicy `yaml:"critical_policy"`
	CriticalDecay   float64        `yaml:"critical_decay"` // per-step decay under accumulate_decay
}

// RecencyConfig shapes the hot/cold sliding window.
type RecencyConfig struct {
	Window    int `yaml:"window"`     // series counted, valid range [8,16]
	ColdCount int `yaml:"cold_count"` // size of the cold set
	HotCount  int `yaml:"hot_count"`  // size of the hot set
}

// ScoringConfig carries the additive multipliers of the composite score.
type ScoringConfig struct {
	PairMultiplier         float64 `yaml:"pair_multiplier"`
	TripleMultiplier       float64 `yaml:"triple_multiplier"`
	HotBoost               float64 `yaml:"hot_boost"`
	ColdBoost              float64 `yaml:"cold_boost"`
	CriticalBoost          float64 `yaml:"critical_boost"`
	ImbalancePenalty       float64 `yaml:"imbalance_penalty"` // 0 disables the soft range penalty
	GeneratorHotBoost      float64 `yaml:"generator_hot_boost"`
	GeneratorColdBoost     float64 `yaml:"generator_cold_boost"`
	GeneratorCriticalBoost float64 `yaml:"generator_critical_boost"`
}

// EnsembleConfig sizes the multi-seed search.
type EnsembleConfig struct {
	Seeds              []int64 `yaml:"seeds"`      // explicit seed list; empty derives NumSeeds from BaseSeed
	NumSeeds           int     `yaml:"num_seeds"`
	BaseSeed           int64   `yaml:"base_seed"`
	PoolSize           int     `yaml:"pool_size"`
	TrainingPoolSize   int     `yaml:"training_pool_size"` // pool drawn per series during replay
	LocalSearchK       int     `yaml:"local_search_k"`
	TopN               int     `yaml:"top_n"`
	DiversityThreshold float64 `yaml:"diversity_threshold"`
	Workers            int     `yaml:"workers"` // 0 = NumCPU
}

// OutputConfig routes run artifacts.
type OutputConfig struct {
	ArtifactsDir string `yaml:"artifacts_dir"`
	DatabasePath string `yaml:"database_path"` // empty disables run history
	ReportPath   string `yaml:"report_path"`
}

// Defaults returns the tuned default configuration.
func Defaults() *Config {
	return &Config{
		Weights: WeightsConfig{
			Cap:             100.0,
			SingleBoost:     5.0,
			PairIncrement:   1.0,
			TripleIncrement: 0.5,
			MaxTriples:      4000,
			DecayRate:       0, // disabled by default
			DecayCadence:    10,
			CriticalPolicy:  CriticalClearReplace,
			CriticalDecay:   0.5,
		},
		Recency: RecencyConfig{
			Window:    12,
			ColdCount: 6,
			HotCount:  6,
		},
		Scoring: ScoringConfig{
			PairMultiplier:         0.35,
			TripleMultiplier:       0.15,
			HotBoost:               8.0,
			ColdBoost:              6.0,
			CriticalBoost:          12.0,
			ImbalancePenalty:       2.0,
			GeneratorHotBoost:      1.6,
			GeneratorColdBoost:     1.4,
			GeneratorCriticalBoost: 2.2,
		},
		Ensemble: EnsembleConfig{
			NumSeeds:           16,
			BaseSeed:           1337,
			PoolSize:           600,
			TrainingPoolSize:   40,
			LocalSearchK:       2,
			TopN:               10,
			DiversityThreshold: 0.15,
			Workers:            runtime.NumCPU(),
		},
		Output: OutputConfig{
			ArtifactsDir: "out/artifacts",
			DatabasePath: "out/drawrun.db",
			ReportPath:   "out/report.md",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Weights.Cap <= 0 {
		return fmt.Errorf("weights.cap must be positive, got %f", c.Weights.Cap)
	}
	if c.Weights.DecayRate != 0 && (c.Weights.DecayRate < 0 || c.Weights.DecayRate >= 1.0) {
		return fmt.Errorf("weights.decay_rate must be in (0,1) or 0 to disable, got %f", c.Weights.DecayRate)
	}
	switch c.Weights.CriticalPolicy {
	case CriticalClearReplace, CriticalAccumulateDecay:
	default:
		return fmt.Errorf("unknown critical_policy %q", c.Weights.CriticalPolicy)
	}

	if c.Recency.Window < 8 || c.Recency.Window > 16 {
		return fmt.Errorf("recency.window must be in [8,16], got %d", c.Recency.Window)
	}
	if c.Recency.ColdCount < 0 || c.Recency.HotCount < 0 {
		return fmt.Errorf("recency cold_count and hot_count must be non-negative, got %d/%d",
			c.Recency.ColdCount, c.Recency.HotCount)
	}
	if c.Recency.ColdCount+c.Recency.HotCount > domain.DomainSize {
		return fmt.Errorf("cold_count+hot_count %d exceeds domain size %d",
			c.Recency.ColdCount+c.Recency.HotCount, domain.DomainSize)
	}

	if c.Ensemble.PoolSize <= 0 {
		return fmt.Errorf("ensemble.pool_size must be positive, got %d", c.Ensemble.PoolSize)
	}
	if len(c.Ensemble.Seeds) == 0 && c.Ensemble.NumSeeds <= 0 {
		return fmt.Errorf("ensemble needs seeds or num_seeds > 0")
	}
	if c.Ensemble.LocalSearchK < 0 || c.Ensemble.LocalSearchK > 3 {
		return fmt.Errorf("ensemble.local_search_k must be in [0,3], got %d", c.Ensemble.LocalSearchK)
	}
	if c.Ensemble.TopN <= 0 {
		return fmt.Errorf("ensemble.top_n must be positive, got %d", c.Ensemble.TopN)
	}
	if c.Ensemble.DiversityThreshold < 0 || c.Ensemble.DiversityThreshold > 1 {
		return fmt.Errorf("ensemble.diversity_threshold must be in [0,1], got %f", c.Ensemble.DiversityThreshold)
	}

	return nil
}

// SeedList materializes the ensemble seeds: the explicit list when given,
// otherwise NumSeeds consecutive seeds from BaseSeed.
func (c *Config) SeedList() []int64 {
	if len(c.Ensemble.Seeds) > 0 {
		return c.Ensemble.Seeds
	}
	seeds := make([]int64, c.Ensemble.NumSeeds)
	for i := range seeds {
		seeds[i] = c.Ensemble.BaseSeed + int64(i)
	}
	return seeds
}
