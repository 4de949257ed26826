// Package config holds the flat, immutable-after-load parameter set of
// the design. It mirrors niceyeti-tabular's
// reinforcement.TrainingConfig/FromYaml pattern: an outer envelope is read
// with viper (as YAML; FromEnv layers environment overrides separately), then
// re-marshaled and decoded into the typed inner struct via
// gopkg.in/yaml.v3, so the mapstructure tags viper wants and the yaml
// tags a human editing the file wants can both be satisfied without
// hand-rolling a second parser.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rpreen/xcsf/xerrors"
)

// SelectType is the EA parental-selection variant.
type SelectType string

const (
	SelectRoulette   SelectType = "roulette"
	SelectTournament SelectType = "tournament"
)

// LossFunc is the aggregate error metric used for telemetry/reporting.
// The per-classifier error driving fitness (the design) is
// always the L1-based reduction defined there; LOSS_FUNC only selects
// which scalar Config.Compute reports alongside it (see SPEC_FULL.md
// section 4).
type LossFunc string

const (
	LossMSE  LossFunc = "mse"
	LossRMSE LossFunc = "rmse"
)

// ConditionKind and PredictionKind name the registered variant
// discriminants a Config selects among (the kinds registered with
// condition.Register and prediction.Register).
type ConditionKind string
type PredictionKind string

const (
	ConditionRectangle ConditionKind = "rectangle"
	PredictionNetwork  PredictionKind = "network"
)

// Config is the complete, flat parameter set. Field names track the
// XCSF-standard names the design lists, so a reader coming from
// the reference parameter tables recognizes them immediately.
type Config struct {
	N int `mapstructure:"n" yaml:"n"` // population cap

	Beta  float64 `mapstructure:"beta" yaml:"beta"`
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	Nu    float64 `mapstructure:"nu" yaml:"nu"`
	Eps0  float64 `mapstructure:"eps0" yaml:"eps0"`

	ThetaEA  float64 `mapstructure:"theta_ea" yaml:"theta_ea"`
	ThetaSub int     `mapstructure:"theta_sub" yaml:"theta_sub"`
	ThetaDel int     `mapstructure:"theta_del" yaml:"theta_del"`
	Delta    float64 `mapstructure:"delta" yaml:"delta"`
	ThetaMNA int     `mapstructure:"theta_mna" yaml:"theta_mna"`

	PCrossover float64 `mapstructure:"p_crossover" yaml:"p_crossover"`
	PMutation  float64 `mapstructure:"p_mutation" yaml:"p_mutation"`
	Lambda     int     `mapstructure:"lambda" yaml:"lambda"`
	ErrReduc   float64 `mapstructure:"err_reduc" yaml:"err_reduc"`
	FitReduc   float64 `mapstructure:"fit_reduc" yaml:"fit_reduc"`

	SMutation float64 `mapstructure:"s_mutation" yaml:"s_mutation"`
	CondMin   float64 `mapstructure:"cond_min" yaml:"cond_min"`
	CondMax   float64 `mapstructure:"cond_max" yaml:"cond_max"`

	EASelectType SelectType `mapstructure:"ea_select_type" yaml:"ea_select_type"`
	EASelectSize float64    `mapstructure:"ea_select_size" yaml:"ea_select_size"`
	EASubsumption bool      `mapstructure:"ea_subsumption" yaml:"ea_subsumption"`

	LossFunc LossFunc `mapstructure:"loss_func" yaml:"loss_func"`

	Condition ConditionKind  `mapstructure:"condition" yaml:"condition"`
	Prediction PredictionKind `mapstructure:"prediction" yaml:"prediction"`

	// NumXVars/NumYVars are the problem dimensions (d, k); they are not
	// tunable hyperparameters but are carried on Config since every
	// variant constructor needs them alongside the other knobs.
	NumXVars int `mapstructure:"num_x_vars" yaml:"num_x_vars"`
	NumYVars int `mapstructure:"num_y_vars" yaml:"num_y_vars"`

	// Seed for the injectable RNG (the design).
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// NetworkHidden configures the default topology for the network
	// prediction variant: one entry per hidden layer width. An empty
	// slice means a single linear layer straight from input to output.
	NetworkHidden []int `mapstructure:"network_hidden" yaml:"network_hidden"`
	NetworkEta     float64 `mapstructure:"network_eta" yaml:"network_eta"`
	NetworkMomentum float64 `mapstructure:"network_momentum" yaml:"network_momentum"`
	NetworkDecay   float64 `mapstructure:"network_decay" yaml:"network_decay"`
}

// Default returns the XCSF reference defaults (rpreen/xcsf's param.c
// defaults, adapted).
func Default() Config {
	return Config{
		N:             2000,
		Beta:          0.1,
		Alpha:         0.1,
		Nu:            5,
		Eps0:          0.01,
		ThetaEA:       50,
		ThetaSub:      20,
		ThetaDel:      20,
		Delta:         0.1,
		ThetaMNA:      1,
		PCrossover:    0.8,
		PMutation:     0.04,
		Lambda:        2,
		ErrReduc:      0.25,
		FitReduc:      0.1,
		SMutation:     0.5,
		CondMin:       0,
		CondMax:       1,
		EASelectType:  SelectRoulette,
		EASelectSize:  0.4,
		EASubsumption: true,
		LossFunc:      LossMSE,
		Condition:     ConditionRectangle,
		Prediction:    PredictionNetwork,
		NumXVars:      1,
		NumYVars:      1,
		Seed:          1,
		NetworkHidden: []int{5},
		NetworkEta:    0.1,
		NetworkMomentum: 0.9,
		NetworkDecay:  0,
	}
}

// outerDoc mirrors reinforcement.OuterConfig's kind/def envelope, letting
// the on-disk format carry a schema tag without XCSF's config struct
// needing to know about it.
type outerDoc struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// FromYAML loads a Config from a YAML file, starting from Default() so an
// abbreviated file only needs to override what it changes.
func FromYAML(path string) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}

	outer := outerDoc{}
	if err := vp.Unmarshal(&outer); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal envelope: %w", err)
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return Config{}, fmt.Errorf("config: remarshal: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv layers environment-variable overrides (XCSF_N, XCSF_BETA, ...)
// on top of base, the 12-factor path flagged as a TODO in niceyeti-tabular's
// main.go ("per 12-factor rules, these should be taken from env").
func FromEnv(base Config) (Config, error) {
	vp := viper.New()
	vp.SetEnvPrefix("XCSF")
	vp.AutomaticEnv()

	cfg := base
	for _, key := range []string{"n", "beta", "seed", "condition", "prediction", "loss_func"} {
		if !vp.IsSet(key) {
			continue
		}
		switch key {
		case "n":
			cfg.N = vp.GetInt(key)
		case "beta":
			cfg.Beta = vp.GetFloat64(key)
		case "seed":
			cfg.Seed = vp.GetInt64(key)
		case "condition":
			cfg.Condition = ConditionKind(vp.GetString(key))
		case "prediction":
			cfg.Prediction = PredictionKind(vp.GetString(key))
		case "loss_func":
			cfg.LossFunc = LossFunc(vp.GetString(key))
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration-error class of the design:
// unknown variant discriminants and unknown loss functions are fatal at
// startup, never during learning.
func (c Config) Validate() error {
	switch c.Condition {
	case ConditionRectangle:
	default:
		return fmt.Errorf("config: unknown condition variant %q: %w", c.Condition, xerrors.ErrConfiguration)
	}
	switch c.Prediction {
	case PredictionNetwork:
	default:
		return fmt.Errorf("config: unknown prediction variant %q: %w", c.Prediction, xerrors.ErrConfiguration)
	}
	switch c.LossFunc {
	case LossMSE, LossRMSE:
	default:
		return fmt.Errorf("config: unknown loss function %q: %w", c.LossFunc, xerrors.ErrConfiguration)
	}
	switch c.EASelectType {
	case SelectRoulette, SelectTournament:
	default:
		return fmt.Errorf("config: unknown EA select type %q: %w", c.EASelectType, xerrors.ErrConfiguration)
	}
	if c.Lambda%2 != 0 || c.Lambda <= 0 {
		return fmt.Errorf("config: LAMBDA must be even and positive, got %d: %w", c.Lambda, xerrors.ErrConfiguration)
	}
	if c.N <= 0 {
		return fmt.Errorf("config: N must be positive, got %d: %w", c.N, xerrors.ErrConfiguration)
	}
	if c.NumXVars <= 0 || c.NumYVars <= 0 {
		return fmt.Errorf("config: NUM_X_VARS/NUM_Y_VARS must be positive: %w", xerrors.ErrConfiguration)
	}
	return nil
}
