package shared

import "errors"

// ErrNotFound is returned by repositories when a record looked up by its
// primary key does not exist.
var ErrNotFound = errors.New("not found")
