package functional

func Map[T, V any](slice []T, f func(T) V) []V {
	result := make([]V, len(slice))
	for i, v := range slice {
		result[i] = f(v)
	}

	return result
}

// MapErr is Map for conversions that can fail; the first error aborts.
func MapErr[T, V any](slice []T, f func(T) (V, error)) ([]V, error) {
	result := make([]V, 0, len(slice))
	for _, v := range slice {
		mapped, err := f(v)
		if err != nil {
			return nil, err
		}
		result = append(result, mapped)
	}
	return result, nil
}

func Distinct[T comparable](slice []T) []T {
	seen := make(map[T]struct{})
	result := []T{}

	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			result = append(result, v)
			seen[v] = struct{}{}
		}
	}
	return result
}
