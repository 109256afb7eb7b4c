// Package costmodel loads cost.MachineParams coefficients from a live
// Postgres-backed cost model table rather than internal/cost's illustrative
// defaults, grounded on the teacher's db.go: the same pgxpool.Pool
// connection-and-query shape, generalized from chain-indexer lookups
// (UTXOs, tx block info) to cost-model rows.
package costmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scalus-go/scalus/internal/cost"
	"github.com/scalus-go/scalus/internal/uplc"
)

// Store holds a connection pool and a per-network-name in-memory cache of
// resolved MachineParams. The cache is explicit state owned by one Store
// value, not a package-level global mutated behind callers' backs (spec §9).
type Store struct {
	pool *pgxpool.Pool

	mu    sync.Mutex
	cache map[string]cost.MachineParams
}

// Open connects to the cost-model database for the given network
// ("preprod" or "mainnet"), mirroring db.go's NewDB dial shape.
func Open(ctx context.Context, networkName string) (*Store, error) {
	pool, err := pgxpool.New(ctx, "user=root host=/var/run/postgresql port=5432 dbname=scalus_costmodel_"+networkName)
	if err != nil {
		return nil, fmt.Errorf("costmodel: connecting to Postgres: %w", err)
	}
	return &Store{pool: pool, cache: make(map[string]cost.MachineParams)}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }

// shapeRow is one row of the builtin_cost_functions table: a builtin's cost
// function shape and its coefficients. shape is one of "constant",
// "linear_arg", "linear_max", "linear_sum", "quadratic_arg".
type shapeRow struct {
	builtinName                string
	shape                      string
	argIndex                   int
	interceptMem, interceptCpu int64
	slopeMem, slopeCpu         int64
}

func (r shapeRow) intercept() cost.ExBudget { return cost.ExBudget{Mem: r.interceptMem, Cpu: r.interceptCpu} }
func (r shapeRow) slope() cost.ExBudget     { return cost.ExBudget{Mem: r.slopeMem, Cpu: r.slopeCpu} }

func (r shapeRow) costFunction() (cost.BuiltinCostFunction, error) {
	switch r.shape {
	case "constant":
		return cost.Constant(r.intercept()), nil
	case "linear_arg":
		return cost.LinearInArg(r.argIndex, r.intercept(), r.slope()), nil
	case "linear_max":
		return cost.LinearInMax(r.intercept(), r.slope()), nil
	case "linear_sum":
		return cost.LinearInSum(r.intercept(), r.slope()), nil
	case "quadratic_arg":
		return cost.QuadraticInArg(r.argIndex, r.intercept(), r.slope()), nil
	default:
		return nil, fmt.Errorf("costmodel: unknown cost function shape %q for builtin %q", r.shape, r.builtinName)
	}
}

// Load resolves network's MachineParams, querying Postgres only on the
// first call per network and serving every later call for the same network
// from Store's own cache.
func (s *Store) Load(ctx context.Context, network string) (cost.MachineParams, error) {
	s.mu.Lock()
	if p, ok := s.cache[network]; ok {
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	params, err := s.query(ctx, network)
	if err != nil {
		return cost.MachineParams{}, err
	}

	s.mu.Lock()
	s.cache[network] = params
	s.mu.Unlock()
	return params, nil
}

// Invalidate drops network's cached MachineParams so the next Load re-queries.
func (s *Store) Invalidate(network string) {
	s.mu.Lock()
	delete(s.cache, network)
	s.mu.Unlock()
}

func (s *Store) query(ctx context.Context, network string) (cost.MachineParams, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return cost.MachineParams{}, fmt.Errorf("costmodel: acquiring connection: %w", err)
	}
	defer conn.Release()

	params := cost.DefaultMachineParams()

	stepRows, err := conn.Query(ctx, stepCostQuery, network)
	if err != nil {
		return cost.MachineParams{}, fmt.Errorf("costmodel: querying step costs: %w", err)
	}
	var stepName string
	var stepMem, stepCpu int64
	if _, err := pgx.ForEachRow(stepRows, []any{&stepName, &stepMem, &stepCpu}, func() error {
		k, ok := stepKindByName(stepName)
		if !ok {
			return fmt.Errorf("costmodel: unknown step kind %q", stepName)
		}
		params.StepCosts[k] = cost.ExBudget{Mem: stepMem, Cpu: stepCpu}
		return nil
	}); err != nil {
		return cost.MachineParams{}, fmt.Errorf("costmodel: reading step costs: %w", err)
	}

	builtinRows, err := conn.Query(ctx, builtinCostQuery, network)
	if err != nil {
		return cost.MachineParams{}, fmt.Errorf("costmodel: querying builtin costs: %w", err)
	}
	var row shapeRow
	if _, err := pgx.ForEachRow(builtinRows, []any{
		&row.builtinName, &row.shape, &row.argIndex,
		&row.interceptMem, &row.interceptCpu, &row.slopeMem, &row.slopeCpu,
	}, func() error {
		id, ok := uplc.BuiltinIdByName(row.builtinName)
		if !ok {
			return fmt.Errorf("costmodel: unknown builtin %q", row.builtinName)
		}
		fn, err := row.costFunction()
		if err != nil {
			return err
		}
		params.BuiltinCostModel[id] = fn
		return nil
	}); err != nil {
		return cost.MachineParams{}, fmt.Errorf("costmodel: reading builtin costs: %w", err)
	}

	return params, nil
}

var stepKindsByName = map[string]cost.StepKind{
	cost.StepVar.String():      cost.StepVar,
	cost.StepLamAbs.String():   cost.StepLamAbs,
	cost.StepApply.String():    cost.StepApply,
	cost.StepDelay.String():    cost.StepDelay,
	cost.StepForce.String():    cost.StepForce,
	cost.StepConstant.String(): cost.StepConstant,
	cost.StepBuiltin.String():  cost.StepBuiltin,
	cost.StepConstr.String():   cost.StepConstr,
	cost.StepCase.String():     cost.StepCase,
}

func stepKindByName(name string) (cost.StepKind, bool) {
	k, ok := stepKindsByName[name]
	return k, ok
}

const stepCostQuery = `
SELECT step_name, mem, cpu
FROM step_costs
WHERE network = $1
`

const builtinCostQuery = `
SELECT builtin_name, shape, arg_index, intercept_mem, intercept_cpu, slope_mem, slope_cpu
FROM builtin_cost_functions
WHERE network = $1
`
