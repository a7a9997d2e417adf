package validation

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-studio/internal/types"
)

// Error reports the field errors that block a status transition.
type Error struct {
	Target types.Status
	Fields []types.FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation error: cannot save as %s: %s: %s", e.Target, e.Fields[0].Field, e.Fields[0].Message)
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation error: cannot save as %s: %d fields failed (%s)", e.Target, len(e.Fields), strings.Join(names, ", "))
}
