package unpickle

import "reflect"

// deepEqual is like reflect.DeepEqual but also understands Dict.
//
// reflect.DeepEqual would consider two Dicts holding the same entries
// unequal, since each Dict wraps its own gomap.Map with its own internal
// hash seed; it also cannot see that int64(1) and float64(1.0) are the same
// key in PyDict mode. deepEqual delegates Dict-to-Dict comparisons to
// pyEqual on keys and deepEqual on values, and falls back to
// reflect.DeepEqual for everything else (ints, floats, strings, lists,
// plain maps, Sets).
func deepEqual(a, b any) bool {
	da, aIsDict := a.(Dict)
	db, bIsDict := b.(Dict)
	if aIsDict != bIsDict {
		return false
	}
	if !aIsDict {
		return reflect.DeepEqual(a, b)
	}

	if da.Len() != db.Len() {
		return false
	}

	eq := true
	da.Iter()(func(ka, va any) bool {
		found := false
		db.Iter()(func(kb, vb any) bool {
			if pyEqual(ka, kb) {
				found = deepEqual(va, vb)
				return false
			}
			return true
		})
		if !found {
			eq = false
			return false
		}
		return true
	})
	return eq
}
