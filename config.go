package lexgraph

import "github.com/lexgraph/lexgraph/codegen"

// SourceKind names the alphabet Build assumes for every pattern: valid
// UTF-8 text or unconstrained raw bytes (§6's source-kind global flag).
type SourceKind uint8

const (
	// SourceUTF8Text requires every pattern to only ever match valid
	// UTF-8; mir.Lower rejects a pattern that can match otherwise.
	SourceUTF8Text SourceKind = iota
	// SourceRawBytes permits `.` and byte classes to cover the full
	// 0x00-0xFF range, including invalid UTF-8 sequences.
	SourceRawBytes
)

// String returns a human-readable source-kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceUTF8Text:
		return "utf8-text"
	case SourceRawBytes:
		return "raw-bytes"
	default:
		return "unknown"
	}
}

// Config aggregates the sub-configs each pipeline stage needs, the same
// way meta.Config aggregates its DFA/prefilter knobs: Build never asks a
// caller to configure mir, leaf, graph, optimize, or codegen directly.
type Config struct {
	// SourceKind constrains the alphabet every descriptor's pattern may
	// match (§6). Default: SourceUTF8Text.
	SourceKind SourceKind

	// Unicode enables full Unicode case folding for ignore-case patterns.
	// When false, folding is restricted to ASCII letters. Default: true.
	Unicode bool

	// Subpatterns supplies named subpattern definitions shared by every
	// descriptor's pattern text, referenced as (?&name).
	Subpatterns map[string]string

	// DefaultSkipPattern, when non-empty, is compiled as an additional
	// leaf with CallbackShape{Kind: ShapeSkip} and the lowest priority,
	// the convenience default-skip regex described in §6.
	DefaultSkipPattern string

	// Backend selects the generated code's control-flow shape. Default:
	// codegen.BackendDispatchLoop.
	Backend codegen.Backend

	// Package is the generated file's package clause. Default: "lexed".
	Package string

	// TypeName prefixes every generated identifier. Default: "Lex".
	TypeName string

	// Debug causes Build to additionally populate Generated.Diag with
	// the text/DOT/Mermaid dumps of the optimized graph (§4.6). The core
	// applies no gating of its own beyond this flag — deciding when to
	// surface the dumps to a user is the host binding's job.
	Debug bool
}

// DefaultConfig returns the Config Build uses when the caller supplies
// the zero value: UTF-8 source, ASCII-only case folding disabled (full
// Unicode folding on), the dispatch-loop backend, and debug output off.
func DefaultConfig() Config {
	return Config{
		SourceKind: SourceUTF8Text,
		Unicode:    true,
		Backend:    codegen.BackendDispatchLoop,
		Package:    "lexed",
		TypeName:   "Lex",
	}
}

// ConfigError reports an invalid Config field, mirroring the
// Field+Message shape the corpus's own meta.ConfigError uses.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "lexgraph: invalid config: " + e.Field + ": " + e.Message
}

// Validate checks that c's fields are internally consistent, returning a
// *ConfigError naming the first field found invalid.
func (c Config) Validate() error {
	if c.SourceKind != SourceUTF8Text && c.SourceKind != SourceRawBytes {
		return &ConfigError{Field: "SourceKind", Message: "must be SourceUTF8Text or SourceRawBytes"}
	}
	if c.Backend != codegen.BackendDispatchLoop && c.Backend != codegen.BackendTailCall {
		return &ConfigError{Field: "Backend", Message: "must be BackendDispatchLoop or BackendTailCall"}
	}
	if c.Package == "" {
		return &ConfigError{Field: "Package", Message: "must not be empty"}
	}
	if c.TypeName == "" {
		return &ConfigError{Field: "TypeName", Message: "must not be empty"}
	}
	return nil
}
