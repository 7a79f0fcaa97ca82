package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrUnsupportedValue indicates the script left a value which a save file can not hold.
	ErrUnsupportedValue = errors.New("script: unsupported value")

	// ErrScriptFailed indicates the script could not be compiled or raised an error.
	ErrScriptFailed = errors.New("script: failed")
)

// classifyError maps an error from the Lua VM into errors this package
// exposes. Cancellation is reported as the context error itself, so that
// callers can tell a user interrupt from a broken script.
//
// NOTE: gopher-lua does not wrap the context error, it only keeps the message.
// Therefore the message is compared instead of errors.Is.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	mes := err.Error()
	switch {
	case strings.Contains(mes, context.DeadlineExceeded.Error()):
		return context.DeadlineExceeded
	case strings.Contains(mes, context.Canceled.Error()):
		return context.Canceled
	}

	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if apiErr.Type == lua.ApiErrorSyntax {
			return fmt.Errorf("%w: syntax error: %v", ErrScriptFailed, apiErr.Object)
		}
		return fmt.Errorf("%w: %v", ErrScriptFailed, apiErr.Object)
	}
	return fmt.Errorf("%w: %v", ErrScriptFailed, err)
}
