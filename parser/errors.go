package parser

import (
	"fmt"

	"github.com/dellyoung/less-oxide/lesserr"
)

func newParseErrorf(position int, format string, args ...any) error {
	return lesserr.NewParseError(fmt.Sprintf(format, args...), position)
}
