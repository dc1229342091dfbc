package gamedata

import (
	"encoding/json"
	"fmt"
)

// Load unmarshals one embedded catalog file into T.
func Load[T any](filename string) (T, error) {
	var out T

	raw, err := catalogFS.ReadFile(filename)
	if err != nil {
		return out, fmt.Errorf("read catalog %s: %w", filename, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse catalog %s: %w", filename, err)
	}
	return out, nil
}

// MustLoad is Load for catalogs the game cannot start without; it panics on
// any error, which only happens when an embedded file is malformed at build
// time.
func MustLoad[T any](filename string) T {
	out, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return out
}
