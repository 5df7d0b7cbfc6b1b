// Package errutil contains small helpers to simplify working with errors.
package errutil

import "io"

// Close closes c and stores its error in *err if *err is still nil. It lets
// a deferred Close() report a failure without silently overwriting an
// earlier one.
func Close(c io.Closer, err *error) {
	e := c.Close()
	if *err == nil && e != nil {
		*err = e
	}
}
