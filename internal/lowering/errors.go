package lowering

import "fmt"

// Pos is a source position, when the front end that produced a SIR tree
// tracks one. The zero value means "position unknown".
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown position>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// CompileError is a compile-time lowering failure (spec §4.1: ill-typed
// SIR, mutual recursion, an unsupported pattern, an unknown constructor, or
// a missing match case are all reported this way, never as a runtime UPLC
// Error term).
type CompileError struct {
	Pos     Pos
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func errf(pos Pos, format string, args ...any) *CompileError {
	return &CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
