package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalus-go/scalus/internal/lowering"
	"github.com/scalus-go/scalus/internal/pipeline"
)

func resetViper() {
	viper.Reset()
}

func TestLoadDefaults(t *testing.T) {
	resetViper()
	cmd := &cobra.Command{Use: "test"}
	if err := BindFlags(cmd); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetVersion != lowering.V4 {
		t.Errorf("TargetVersion = %v, want V4", cfg.TargetVersion)
	}
	if cfg.Backend != pipeline.BackendReference {
		t.Errorf("Backend = %v, want BackendReference", cfg.Backend)
	}
	if cfg.InitialBudget.Mem != defaultMem || cfg.InitialBudget.Cpu != defaultCpu {
		t.Errorf("InitialBudget = %+v, want {%d %d}", cfg.InitialBudget, defaultMem, defaultCpu)
	}
	if cfg.FlatEncode {
		t.Errorf("FlatEncode = true, want false")
	}
	if cfg.CostModelNetwork != "" {
		t.Errorf("CostModelNetwork = %q, want empty (live cost-model lookup off by default)", cfg.CostModelNetwork)
	}
}

func TestLoadRespectsFlagOverride(t *testing.T) {
	resetViper()
	cmd := &cobra.Command{Use: "test"}
	if err := BindFlags(cmd); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := cmd.PersistentFlags().Set("version", "v1"); err != nil {
		t.Fatalf("Set version: %v", err)
	}
	if err := cmd.PersistentFlags().Set("backend", "staged-trampoline"); err != nil {
		t.Fatalf("Set backend: %v", err)
	}
	if err := cmd.PersistentFlags().Set("flat", "true"); err != nil {
		t.Fatalf("Set flat: %v", err)
	}
	if err := cmd.PersistentFlags().Set("cost-model-network", "preprod"); err != nil {
		t.Fatalf("Set cost-model-network: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetVersion != lowering.V1 {
		t.Errorf("TargetVersion = %v, want V1", cfg.TargetVersion)
	}
	if cfg.Backend != pipeline.BackendStagedTrampoline {
		t.Errorf("Backend = %v, want BackendStagedTrampoline", cfg.Backend)
	}
	if !cfg.FlatEncode {
		t.Errorf("FlatEncode = false, want true")
	}
	if cfg.CostModelNetwork != "preprod" {
		t.Errorf("CostModelNetwork = %q, want preprod", cfg.CostModelNetwork)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	resetViper()
	cmd := &cobra.Command{Use: "test"}
	if err := BindFlags(cmd); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := cmd.PersistentFlags().Set("version", "v99"); err != nil {
		t.Fatalf("Set version: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected Load to reject an unknown version")
	}
}
