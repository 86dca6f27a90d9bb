// Package envx reads typed configuration values from the process
// environment. An unset or empty variable yields the supplied default.
package envx

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Lookup reports the value of key and whether it is set to a non-empty
// string.
func Lookup(key string) (string, bool) {
	val := os.Getenv(key)
	return val, val != ""
}

// Default returns the value of key or defaultVal.
func Default(key, defaultVal string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return defaultVal
}

// Int returns the integer value of key or defaultVal.
func Int(key string, defaultVal int) (int, error) {
	val, ok := Lookup(key)
	if !ok {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, val)
	}
	return n, nil
}

// Bool returns the boolean value of key or defaultVal. Accepted values are
// those of strconv.ParseBool.
func Bool(key string, defaultVal bool) (bool, error) {
	val, ok := Lookup(key)
	if !ok {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q (use true, false, 1, 0)", key, val)
	}
	return b, nil
}

// Duration returns the duration value of key or defaultVal. Values use Go
// syntax (30s, 1h, 15m) and must be positive.
func Duration(key string, defaultVal time.Duration) (time.Duration, error) {
	val, ok := Lookup(key)
	if !ok {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q (use Go format: 30s, 1h, 15m)", key, val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be > 0", key)
	}
	return d, nil
}
