package lessoxide

import "github.com/dellyoung/less-oxide/lesserr"

// ParseError, EvalError, and their constructors live in lesserr so that
// parser, importer, and evaluator can construct them without importing
// this root package back (which would be an import cycle). They're
// aliased here so callers of the public API keep using lessoxide.ParseError
// etc.
type (
	ParseError = lesserr.ParseError
	EvalError  = lesserr.EvalError
)

var (
	NewParseError = lesserr.NewParseError
	NewEvalError  = lesserr.NewEvalError
	WrapEvalError = lesserr.WrapEvalError
	WithFilePath  = lesserr.WithFilePath
)
