package lowering

import (
	"fmt"

	"github.com/scalus-go/scalus/internal/sir"
)

// programState is the bookkeeping shared by every Context derived from one
// top-level lowering call: a unique-name counter and the "does the output
// need the Z combinator materialized" flag (spec §4.1). It is the single
// piece of mutable state lowering carries — deliberately separate from the
// SIR tree itself, which Context never mutates.
type programState struct {
	counter int
	needsZ  bool
}

// Context threads the declarations-in-scope map through lowering. Entering
// a Decl scope extends the map functionally (copy, not mutate) so sibling
// branches of the lowering never observe each other's declarations; the
// counter/needsZ bookkeeping is shared via a pointer because it is
// genuinely program-global, not scope-local.
type Context struct {
	decls map[string]*sir.DataDecl
	state *programState
}

// NewContext returns an empty top-level lowering context.
func NewContext() *Context {
	return &Context{decls: map[string]*sir.DataDecl{}, state: &programState{}}
}

// WithDecl returns a new Context with d additionally in scope, leaving the
// receiver unmodified.
func (c *Context) WithDecl(d *sir.DataDecl) *Context {
	next := make(map[string]*sir.DataDecl, len(c.decls)+1)
	for k, v := range c.decls {
		next[k] = v
	}
	next[d.Name] = d
	return &Context{decls: next, state: c.state}
}

// LookupDecl finds a declaration by name among those currently in scope.
func (c *Context) LookupDecl(name string) (*sir.DataDecl, bool) {
	d, ok := c.decls[name]
	return d, ok
}

// FreshName synthesizes a name guaranteed unique within this lowering run,
// used for synthesized binders (e.g. the let-bound scrutinee of a Data
// match) that have no SIR-level name of their own.
func (c *Context) FreshName(prefix string) string {
	c.state.counter++
	return fmt.Sprintf("%s$%d", prefix, c.state.counter)
}

// MarkNeedsZ records that the program being lowered requires the Z
// combinator to be materialized in its output.
func (c *Context) MarkNeedsZ() { c.state.needsZ = true }

// NeedsZ reports whether MarkNeedsZ was ever called during this lowering
// run.
func (c *Context) NeedsZ() bool { return c.state.needsZ }
