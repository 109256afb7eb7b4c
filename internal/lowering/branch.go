package lowering

import "github.com/scalus-go/scalus/internal/uplc"

// buildBranchFunc wraps body in one LamAbs per field name, outermost first,
// so a branch can be "applied to the values in order" (spec §4.1) whether
// the caller is the Scott-encoded application chain or a native Case term
// — both deliver a constructor's fields to a branch by serial application,
// so both share this one construction.
func buildBranchFunc(fields []string, body uplc.Term) uplc.Term {
	term := body
	for i := len(fields) - 1; i >= 0; i-- {
		term = uplc.LamAbs{Name: fields[i], Body: term}
	}
	return term
}

// ignoredFieldNames synthesizes n distinct, never-referenced binder names
// for a wildcard-expanded branch of a constructor whose fields the branch
// body does not mention.
func ignoredFieldNames(ctx *Context, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = ctx.FreshName("_ignored")
	}
	return names
}
