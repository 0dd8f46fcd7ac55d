// Package env provides type-safe environment variable parsing with validation.
package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	// ErrMissing indicates a required environment variable was not set.
	ErrMissing = errors.New("environment variable missing")
	// ErrParsing indicates an environment variable could not be parsed.
	ErrParsing = errors.New("environment variable parsing failed")
)

// Error represents an environment variable error with the variable name.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("environment variable %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Get retrieves an environment variable with a default value.
// An unset variable yields the default; a set but unparsable one is an error.
func Get[T any](key string, defaultValue T, parser func(string) (T, error)) (T, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}

	parsed, err := parser(value)
	if err != nil {
		var zero T
		return zero, &Error{Key: key, Err: errors.Join(ErrParsing, err)}
	}
	return parsed, nil
}

// GetRequired retrieves a required environment variable.
// Returns an error if the variable is not set or parsing fails.
func GetRequired[T any](key string, parser func(string) (T, error)) (T, error) {
	var zero T

	value, ok := os.LookupEnv(key)
	if !ok {
		return zero, &Error{Key: key, Err: ErrMissing}
	}

	parsed, err := parser(value)
	if err != nil {
		return zero, &Error{Key: key, Err: errors.Join(ErrParsing, err)}
	}
	return parsed, nil
}

// ParseNonEmptyString validates that the input string is not empty.
func ParseNonEmptyString(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty string not allowed")
	}
	return s, nil
}

// ParseInt parses a string as a base-10 int.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePositiveInt parses a base-10 int that must be at least 1.
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("value %d must be >= 1", n)
	}
	return n, nil
}

// ParseNonNegativeInt parses a base-10 int that must be at least 0.
func ParseNonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("value %d must be >= 0", n)
	}
	return n, nil
}

// ParseMinutes parses a positive integer number of minutes into a time.Duration.
func ParseMinutes(s string) (time.Duration, error) {
	n, err := ParsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}
