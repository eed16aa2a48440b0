// Package config holds the elaborator's ambient, process-wide knobs.
//
// The teacher (funvibe-funxy) keeps this kind of thing as a small package
// of exported vars/consts (source file extensions, a version string,
// an IsTestMode/IsLSPMode pair read by String() methods elsewhere); this
// rewrite keeps that shape and repurposes it for the elaborator's own
// ambient concerns instead of the lexer/CLI ones the teacher used it for.
package config

// EvalStepBudget is the default reduction-step budget handed to the
// evaluator (spec §9: "Implementations should expose a configurable step
// budget for use in tooling"). A Budget of 0 passed explicitly to Eval
// means unbounded; this constant is only the default a driver gets if it
// does not specify one.
var EvalStepBudget = 1_000_000

// IsTestMode mirrors the teacher's config.IsTestMode flag for golden-file
// test runs. Nothing in this module reads it: metavariable names in
// diagnostics always carry their allocation id (e.g. "?m42").
var IsTestMode = false

// EnablePruning gates metavariable telescope pruning (spec §9 Open
// Question). The reference system implements pruning at limited scope;
// this rewrite documents the decision to omit it (DESIGN.md, Open
// Question OQ-2) rather than silently guess at the omitted algorithm.
// Nothing in the module reads this flag, so setting it to true changes no
// behavior.
var EnablePruning = false
