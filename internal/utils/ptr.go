package utils

import "strings"

// Ptr is used for the optional score and profile columns
func Ptr[T any](v T) *T {
	return &v
}

// OrZero reads an optional value, a missing score counts as zero goals
func OrZero[T comparable](v *T) T {
	if v != nil {
		return *v
	}
	var zero T
	return zero
}

// StringOrNil keeps blank provider fields out of the database
func StringOrNil(s string) *string {
	if s = strings.TrimSpace(s); s != "" {
		return &s
	}
	return nil
}
