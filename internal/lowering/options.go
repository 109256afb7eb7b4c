// Package lowering implements SIR → UPLC lowering (spec §4.1): given a SIR
// tree, a target protocol version, and a set of options, it produces a
// UPLC term observationally equivalent to the SIR tree's semantics.
package lowering

// Version is the closed set of protocol versions lowering can target.
// Versions V1-V3 lack native Constr/Case support and must Scott-encode
// sum-of-products; V4 and V5 have native support.
type Version int

const (
	V1 Version = iota + 1
	V2
	V3
	V4
	V5
)

// SupportsNativeCase reports whether v has native Constr/Case terms,
// gating every "starting at a declared version" rule in §4.1.
func (v Version) SupportsNativeCase() bool { return v >= V4 }

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	case V3:
		return "V3"
	case V4:
		return "V4"
	case V5:
		return "V5"
	default:
		return "V?"
	}
}

// Options groups every knob lowering is threaded with, mirroring the
// grouped, JSON-tagged option-struct style the teacher uses for its own
// cost/network parameters (cli.go's CardanoCLIParameters).
type Options struct {
	// TargetVersion selects the Scott-encoding vs native Constr/Case
	// strategy (§4.1 "Core decisions").
	TargetVersion Version

	// ErrorTraces, when true, wraps every lowered Error in a Trace call
	// emitting the SIR Error's message before failing.
	ErrorTraces bool

	// Optimize gates the let-floating pre-lowering rewrite pass.
	Optimize bool

	// Debug is accepted but not read by lowering: output is the same
	// either way, and lowered LamAbs/Var nodes keep their SIR-level names
	// whether or not it is set. It has no effect on evaluated semantics.
	Debug bool
}
