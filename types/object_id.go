package types

import (
	"reflect"
)

// ObjectID identifies a pad, a node or a kernel in logs and statistics.
// It is derived from the address, so it is only unique among live objects.
type ObjectID uint64

type GetObjectIDer interface {
	GetObjectID() ObjectID
}

func GetObjectID[T any](obj *T) ObjectID {
	if obj == nil {
		return 0
	}
	return ObjectID(reflect.ValueOf(obj).Pointer())
}
