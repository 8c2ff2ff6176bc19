// Package diag provides the structured diagnostic type shared by every
// phase of the front-end: the preprocessor, the HIR builder, and the
// instance elaborator. It follows the error-code taxonomy convention used
// throughout this codebase's ancestry — one short prefix per phase, three
// digits per distinct condition — so tooling can group and filter
// diagnostics by phase without parsing prose.
package diag

// Preprocessor errors (PP###). See spec.md §7.
const (
	// PPUnknownDirective is emitted when a backtick-prefixed name is
	// neither a recognized directive nor a defined macro.
	PPUnknownDirective = "PP001"
	// PPMalformedDirective covers bad include syntax, unterminated
	// filenames, missing macro names, and bad argument lists.
	PPMalformedDirective = "PP002"
	// PPUnbalancedConditional covers `elsif`/`else`/`endif with no
	// matching `ifdef/`ifndef.
	PPUnbalancedConditional = "PP003"
	// PPIncludeFailed is emitted when an `include target cannot be
	// opened on any search path.
	PPIncludeFailed = "PP004"
	// PPStrayBacktick covers a lone backtick or a `` `` `` concatenation
	// token used outside of a macro body.
	PPStrayBacktick = "PP005"
)

// Elaborator errors (ELB###). See spec.md §4.4, §7.
const (
	// ELBUnknownModule is emitted when an instantiation target names a
	// module that cannot be found.
	ELBUnknownModule = "ELB001"
	// ELBUnboundParameter is emitted when a declared parameter is bound
	// neither by position nor by name and has no declared default.
	ELBUnboundParameter = "ELB002"
	// ELBSuperfluousArgument is emitted when an instantiation supplies
	// more positional parameters or ports than the target declares.
	ELBSuperfluousArgument = "ELB003"
	// ELBUnknownNamedBinding is emitted when a named parameter or port
	// does not match any declaration on the target.
	ELBUnknownNamedBinding = "ELB004"
)

// Parser errors (PAR###). The surface-syntax grammar is an ambient
// addition built to drive the HIR builder end to end; it shares the same
// phase/code convention as the rest of the front end.
const (
	// ParUnexpectedToken is emitted when the parser expects one of a set
	// of tokens and finds something else.
	ParUnexpectedToken = "PAR001"
	// ParUnexpectedEOF is emitted when input ends mid-construct.
	ParUnexpectedEOF = "PAR002"
)

// HIR builder errors (LOW###), another ambient addition alongside the
// parser's PAR### codes.
const (
	// LowMalformedLiteral is emitted when an integer literal's text cannot
	// be parsed as a big.Int.
	LowMalformedLiteral = "LOW001"
)

// Internal invariant violations (HIR###). These indicate a compiler bug —
// a typed HIR lookup found the wrong node kind — not a user error. The
// arena signals both conditions by panicking with a plain message; no
// Report carrying these codes is emitted.
const (
	// HIRWrongKind names the condition where a query expects one HIR
	// node kind and the arena holds another for that id.
	HIRWrongKind = "HIR001"
	// HIRDanglingID names the condition where a NodeId does not resolve
	// to any node in the arena at all.
	HIRDanglingID = "HIR002"
)
