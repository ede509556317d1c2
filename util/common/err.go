package common

import (
	"errors"
	"fmt"

	"vvotes/logger"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}

// Combine merges the non-nil errors into one, or returns nil.
func Combine(errs ...error) error {
	var errmsg string
	for _, err := range errs {
		if err != nil {
			errmsg += err.Error() + "; "
		}
	}
	if errmsg != "" {
		return errors.New(errmsg)
	}
	return nil
}
