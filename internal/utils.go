package internal

func ToPtr[T any](val T) *T {
	return &val
}

// ConvertPtr converts a non-nil pointer to a pointer of another numeric type.
func ConvertPtr[T, R ~int | ~int32 | ~int64 | ~float32 | ~float64](val *T) *R {
	if val == nil {
		return nil
	}
	v := R(*val)
	return &v
}
