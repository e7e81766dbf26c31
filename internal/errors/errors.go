package errors

import "fmt"

func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap annotates err with a formatted prefix, keeping err in the chain.
func Wrap(err error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
