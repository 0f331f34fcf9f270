package unpickle

// Dict is a Python-equivalent-hashing dictionary: Get_/Set treat int64(1),
// float64(1.0) and any other numerically-equal int/float pair as the same
// key, the way Python's own dict does. A plain Go
// map[interface{}]interface{} cannot offer this (int64(1) and float64(1.0)
// hash and compare differently), so Dict delegates to
// github.com/aristanetworks/gomap, which accepts custom hash/equal
// functions instead of requiring Go's built-in comparability.
//
// Dict is used when a Decoder is constructed with DecoderConfig.PyDict set;
// otherwise decoded dicts stay plain Go maps.
import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"sort"

	"github.com/aristanetworks/gomap"
)

// Dict represents a decoded dict in PyDict mode.
//
// Like a builtin map, Dict is pointer-like: its zero value is a nil
// dictionary, empty and invalid to Set on. Use NewDict.
type Dict struct {
	m *gomap.Map[any, any]
}

// NewDict returns a new empty Dict.
func NewDict() Dict {
	return NewDictWithSizeHint(0)
}

// NewDictWithSizeHint returns a new empty Dict preallocated for size items.
func NewDictWithSizeHint(size int) Dict {
	return Dict{m: gomap.NewHint[any, any](size, pyEqual, pyHash)}
}

// Get_ is the comma-ok accessor: it reports whether a key equal to key is
// present.
func (d Dict) Get_(key any) (value any, ok bool) {
	return d.m.Get(key)
}

// Set assigns key to value, replacing any existing equal key first so a
// later Set(1.0, ...) after Set(1, ...) overwrites rather than duplicates —
// matching Python's last-wins behavior for dict literals with equal keys
// written under different numeric types.
//
// Set panics if key's type cannot be used as a Dict key (anything that is
// not hashable the way Python would hash it).
func (d Dict) Set(key, value any) {
	d.m.Delete(key)
	d.m.Set(key, value)
}

// Len returns the number of entries in the dictionary.
func (d Dict) Len() int {
	return d.m.Len()
}

// Iter returns an iterator over all entries, in arbitrary order.
func (d Dict) Iter() func(yield func(any, any) bool) {
	it := d.m.Iter()
	return func(yield func(any, any) bool) {
		for it.Next() {
			if !yield(it.Key(), it.Elem()) {
				break
			}
		}
	}
}

// String returns a human-readable representation, with entries sorted by
// key text so output is deterministic across runs.
func (d Dict) String() string {
	type kv struct{ k, v string }
	pairs := make([]kv, 0, d.Len())
	d.Iter()(func(k, v any) bool {
		pairs = append(pairs, kv{fmt.Sprintf("%v", k), fmt.Sprintf("%v", v)})
		return true
	})
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	s := "{"
	for i, p := range pairs {
		if i > 0 {
			s += ", "
		}
		s += p.k + ": " + p.v
	}
	return s + "}"
}

// pyEqual implements dict-key equality the way Python's dict does for the
// value types this decoder can ever produce: strings compare by content,
// and any pair of int64/float64 compares numerically, so 1 and 1.0 are the
// same key. Lists, dicts and sets are never passed here — pyHash panics on
// them first, and dictTryAssign converts that into a decode error
// before pyEqual is ever reached.
func pyEqual(xa, xb any) bool {
	switch a := xa.(type) {
	case string:
		b, ok := xb.(string)
		return ok && a == b
	case int64:
		switch b := xb.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		}
	case float64:
		switch b := xb.(type) {
		case int64:
			return a == float64(b)
		case float64:
			return a == b
		}
	}
	return false
}

// pyHash returns a hash of x consistent with pyEqual: pyEqual(a,b) implies
// pyHash(a) == pyHash(b). It panics with "unhashable type: ..." for any
// value this decoder's grammar can produce that Python itself would also
// reject as a dict key (lists, dicts, sets) — the same contract
// gomap.Map's hash function is expected to honor.
func pyHash(seed maphash.Seed, x any) uint64 {
	switch v := x.(type) {
	case string:
		return maphash.String(seed, v)
	case int64:
		return hashUint64(seed, uint64(v))
	case float64:
		// an integer-valued float hashes the same as the equal int, so
		// that 1 and 1.0 land in the same bucket and compare equal.
		if i := int64(v); float64(i) == v {
			return hashUint64(seed, uint64(i))
		}
		return hashUint64(seed, math.Float64bits(v))
	}
	panic(fmt.Sprintf("unhashable type: %T", x))
}

func hashUint64(seed maphash.Seed, u uint64) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	h.Write(b[:])
	return h.Sum64()
}

