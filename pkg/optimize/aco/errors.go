package aco

import "errors"

var (
	errUnknownNode    = errors.New("aco: unknown source or destination")
	errNoFeasiblePath = errors.New("aco: no colony ant reached the destination")
)
