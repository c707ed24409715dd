package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT sets the test instance used by the helpers below.
func SetT(t *testing.T) {
	testT = t
}

// NoErr unwraps a (value, error) pair, failing the test on error.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err requires a (value, error) pair to carry an error and returns it.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}

// ErrAs requires err to match the error type E and returns the matched value.
func ErrAs[E error](err error) E {
	var target E
	require.True(testT, errors.As(err, &target), "error %v is not a %T", err, target)
	return target
}
