// Package config loads evaluator configuration (lowering target, backend,
// budget, log level, flat encoding, cost-model network name) from flags
// and environment variables; no config file is read, and
// cost.MachineParams themselves are not loaded here. Grounded on the viper+cobra pairing used by orbas1-Synnergy's
// cmd/cli and pkg/config, bound to the same cobra.Command flags cmd/scalus
// builds — generalizing the teacher's single --http flag to a small set of
// evaluator knobs.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/lowering"
	"github.com/scalus-go/scalus/internal/pipeline"
)

// Config is the resolved set of knobs a Pipeline is built from.
type Config struct {
	TargetVersion lowering.Version
	Backend       pipeline.Backend
	InitialBudget cost.ExBudget
	LogLevel      string
	FlatEncode    bool

	// CostModelNetwork, when non-empty, names the network
	// (internal/costmodel.Store.Open's "preprod"/"mainnet") whose live
	// cost-model overrides should replace cost.DefaultMachineParams.
	// Empty disables the lookup entirely, which is the default: most
	// one-shot CLI runs have no cost-model Postgres instance to reach.
	CostModelNetwork string
}

// defaults mirror cost.DefaultMachineParams' own illustrative scale: a
// budget generous enough for test programs and CLI one-shots, not a
// mainnet transaction's actual per-script allowance.
const (
	defaultMem     = 10_000_000
	defaultCpu     = 10_000_000
	defaultVersion = "v4"
	defaultBackend = "reference"
	defaultLevel   = "info"
)

// BindFlags registers the flags config.Load reads, and ties each to its
// viper key so environment variables (SCALUS_<FLAG>) override the same
// default.
func BindFlags(cmd *cobra.Command) error {
	flags := cmd.PersistentFlags()
	flags.String("version", defaultVersion, "target UPLC version (v1-v5)")
	flags.String("backend", defaultBackend, "evaluator backend (reference, staged, staged-trampoline)")
	flags.Int64("mem", defaultMem, "initial execution budget, memory units")
	flags.Int64("cpu", defaultCpu, "initial execution budget, cpu units")
	flags.String("log-level", defaultLevel, "log level (debug, info, warn, error)")
	flags.Bool("flat", false, "round-trip the lowered term through the flat codec before evaluating")
	flags.String("cost-model-network", "", "network name to load live cost-model overrides from (internal/costmodel), empty to use built-in defaults")

	for _, name := range []string{"version", "backend", "mem", "cpu", "log-level", "flat", "cost-model-network"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("config: binding flag %q: %w", name, err)
		}
	}
	return nil
}

// Load resolves a Config from whatever BindFlags registered, applying
// viper's flag > env > default precedence (spec §9 "no
// hidden ordering between configuration sources").
func Load() (Config, error) {
	viper.SetEnvPrefix("scalus")
	viper.AutomaticEnv()

	version, err := parseVersion(viper.GetString("version"))
	if err != nil {
		return Config{}, err
	}
	backend, err := parseBackend(viper.GetString("backend"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		TargetVersion:    version,
		Backend:          backend,
		InitialBudget:    cost.ExBudget{Mem: viper.GetInt64("mem"), Cpu: viper.GetInt64("cpu")},
		LogLevel:         viper.GetString("log-level"),
		FlatEncode:       viper.GetBool("flat"),
		CostModelNetwork: viper.GetString("cost-model-network"),
	}, nil
}

func parseVersion(s string) (lowering.Version, error) {
	switch s {
	case "v1", "V1":
		return lowering.V1, nil
	case "v2", "V2":
		return lowering.V2, nil
	case "v3", "V3":
		return lowering.V3, nil
	case "v4", "V4":
		return lowering.V4, nil
	case "v5", "V5":
		return lowering.V5, nil
	default:
		return 0, fmt.Errorf("config: unknown target version %q", s)
	}
}

func parseBackend(s string) (pipeline.Backend, error) {
	switch s {
	case "reference":
		return pipeline.BackendReference, nil
	case "staged":
		return pipeline.BackendStagedDirect, nil
	case "staged-trampoline":
		return pipeline.BackendStagedTrampoline, nil
	default:
		return 0, fmt.Errorf("config: unknown backend %q", s)
	}
}
