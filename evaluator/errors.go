package evaluator

import (
	"fmt"

	"github.com/dellyoung/less-oxide/lesserr"
)

func evalErrorf(format string, args ...any) error {
	return lesserr.NewEvalError(fmt.Sprintf(format, args...))
}
