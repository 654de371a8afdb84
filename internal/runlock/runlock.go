// Package runlock serializes runs against a shared store. The engine is the
// sole writer during a run; two concurrent runs over one database would
// race, so the second exits instead.
package runlock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Acquire takes an exclusive file lock next to the store. The returned
// release must be called when the run ends. A held lock fails fast rather
// than blocking.
func Acquire(path string) (release func(), err error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another run holds the lock %s", path)
	}
	return func() { _ = fl.Unlock() }, nil
}
