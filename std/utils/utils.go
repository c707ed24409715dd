package utils

// Version of ndnlp from source control.
var Version string = "unknown"

// IdPtr is the pointer version of id: 'a->'a
func IdPtr[T any](value T) *T {
	return &value
}
