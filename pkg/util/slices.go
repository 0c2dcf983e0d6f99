package util

// Unique returns the items in first-seen order with later duplicates removed
func Unique[T comparable](items []T) []T {
	seen := make(map[T]bool, len(items))
	list := make([]T, 0, len(items))

	for _, item := range items {
		if seen[item] {
			continue
		}

		seen[item] = true
		list = append(list, item)
	}

	return list
}

func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// Limit caps the slice at max items, 0 meaning no limit
func Limit[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}

	return items[:max]
}
