// Command scalus lowers and evaluates UPLC/SIR programs, replacing the
// teacher's serve-an-HTTP-API role (main.go's makeCLI/serve pair) with a
// one-shot script-evaluation tool: no long-running server, no TLS, just a
// lowering target, a budget, an evaluator backend, and an optional
// cost-model network name, all bound through internal/config.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scalus-go/scalus/internal/config"
	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/costmodel"
	"github.com/scalus-go/scalus/internal/flat"
	"github.com/scalus-go/scalus/internal/lowering"
	"github.com/scalus-go/scalus/internal/obs"
	"github.com/scalus-go/scalus/internal/pipeline"
	"github.com/scalus-go/scalus/internal/sir"
	"github.com/scalus-go/scalus/internal/sirjson"
	"github.com/scalus-go/scalus/internal/uplc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scalus",
		Short: "Lower and evaluate UPLC/SIR programs",
	}
	if err := config.BindFlags(root); err != nil {
		// BindFlags only fails if a flag name collides with an already
		// registered one; this is a fixed, known-good set, so this
		// indicates a programming error, not a runtime condition.
		panic(err)
	}

	root.AddCommand(newEvalCmd(), newLowerCmd())
	return root
}

func loadLogger(cfg config.Config) obs.Logger {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	return obs.New(level)
}

// loadCostModelParams opens a costmodel.Store for network, loads its
// MachineParams, and closes the connection — a one-shot CLI run has no
// reason to keep the pool open past a single eval.
func loadCostModelParams(network string) (cost.MachineParams, error) {
	ctx := context.Background()
	store, err := costmodel.Open(ctx, network)
	if err != nil {
		return cost.MachineParams{}, fmt.Errorf("eval: opening cost model for %q: %w", network, err)
	}
	defer store.Close()

	params, err := store.Load(ctx, network)
	if err != nil {
		return cost.MachineParams{}, fmt.Errorf("eval: loading cost model for %q: %w", network, err)
	}
	return params, nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func readSIR(path string) (sir.Node, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading SIR input: %w", err)
	}
	node, err := sirjson.DecodeNode(json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding SIR input: %w", err)
	}
	return node, nil
}

func newEvalCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Lower a JSON-encoded SIR program and run it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			node, err := readSIR(inPath)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg.TargetVersion, cfg.Backend, cfg.InitialBudget)
			logger := loadLogger(cfg)
			p.Logger = &loggingSink{logger: logger}
			if cfg.FlatEncode {
				p.FlatVersion = &flat.Version{Major: 1, Minor: 0, Patch: 0}
			}
			if cfg.CostModelNetwork != "" {
				params, err := loadCostModelParams(cfg.CostModelNetwork)
				if err != nil {
					return err
				}
				p.Params = params
			}

			outcome, err := p.Run(node)
			if err != nil {
				return fmt.Errorf("eval: %w", err)
			}

			if outcome.Success {
				fmt.Printf("success\nterm: %s\nbudget spent: %s\n", outcome.Term, outcome.SpentBudget)
			} else {
				fmt.Printf("failure (%s): %s\nbudget spent: %s\n", outcome.FailureKind, outcome.FailureMsg, outcome.SpentBudget)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "-", "path to a JSON-encoded SIR program, or - for stdin")
	return cmd
}

func newLowerCmd() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "lower",
		Short: "Lower a JSON-encoded SIR program to UPLC, optionally flat-encoded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			node, err := readSIR(inPath)
			if err != nil {
				return err
			}

			term, err := lowering.Lower(node, lowering.Options{TargetVersion: cfg.TargetVersion})
			if err != nil {
				return fmt.Errorf("lower: %w", err)
			}

			if cfg.FlatEncode {
				resolved := uplc.ResolveDeBruijn(term)
				encoded, err := flat.Encode(resolved, flat.Version{Major: 1, Minor: 0, Patch: 0})
				if err != nil {
					return fmt.Errorf("lower: flat-encoding: %w", err)
				}
				return writeOutput(outPath, encoded)
			}
			return writeOutput(outPath, []byte(term.String()+"\n"))
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "-", "path to a JSON-encoded SIR program, or - for stdin")
	cmd.Flags().StringVar(&outPath, "out", "-", "path to write the lowered UPLC term, or - for stdout")
	return cmd
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loggingSink adapts obs.Logger to abi.LoggerSink, forwarding every trace
// line as an info-level structured log entry.
type loggingSink struct{ logger obs.Logger }

func (s *loggingSink) Append(message string) { s.logger.Infof("trace: %s", message) }
