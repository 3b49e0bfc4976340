package bvh

import "errors"

var (
	ErrNoItems        = errors.New("bvh: no items to partition")
	ErrTooManyItems   = errors.New("bvh: item count exceeds the morton code bit budget")
	ErrNoClusters     = errors.New("bvh: no clusters left after reduction")
	ErrTreeTooDeep    = errors.New("bvh: tree depth exceeds the traversal stack size")
	ErrInvalidBounds  = errors.New("bvh: item bounding box is not finite")
	ErrInvalidOptions = errors.New("bvh: delta must be at least 2")
)
