// Package ptr has helpers for optional fields such as Project.EndDate.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
