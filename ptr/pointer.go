package ptr

func From[T any](v T) *T {
	return &v
}

// NonZero is like From but maps the zero value to nil, for optional fields
// decoded from payloads that send "" instead of omitting them.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
