// Package mirror holds the secondary record stores the ward API copies
// committed writes into. Nothing in the request path reads from them.
package mirror

import "errors"

// ErrNotMirrored is returned when a replace targets a record the mirror has
// never seen. A resync repairs it.
var ErrNotMirrored = errors.New("record not present in mirror")
