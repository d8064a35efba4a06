package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("node not found")
	ErrNotFolder = errors.New("node is not a folder")
	ErrRoot      = errors.New("root cannot be moved or removed")
	ErrSelfMove  = errors.New("node cannot be moved into itself")
	ErrCycle     = errors.New("target folder is inside the moved node")
)

// Diagnostic describes an input a mutation ignored. Mutations never fail;
// diagnostics let callers find out what was skipped.
type Diagnostic struct {
	Op  string
	ID  string
	Err error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %v", d.Op, d.ID, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
