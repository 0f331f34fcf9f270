package unpickle

import "fmt"

// AsInt64 normalizes a decoded value to int64, the Go type Decode uses for
// every decoded int literal. It exists so callers (the --verify
// pretty-printer) can require "this was an int" without repeating the type
// switch Decode's own callers would otherwise need.
func AsInt64(x any) (int64, error) {
	i, ok := x.(int64)
	if !ok {
		return 0, fmt.Errorf("expect int64; got %T", x)
	}
	return i, nil
}

// AsString normalizes a decoded value to string.
func AsString(x any) (string, error) {
	s, ok := x.(string)
	if !ok {
		return "", fmt.Errorf("expect string; got %T", x)
	}
	return s, nil
}
