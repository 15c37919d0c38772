package catalog

// Page is one window of a paginated listing. Number starts at 1.
type Page[T any] struct {
	Items   []T
	Number  int
	HasPrev bool
	HasNext bool
}

// ClampPage maps page numbers below 1 to 1.
func ClampPage(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// pageWindow returns the LIMIT/OFFSET pair for a page, fetching one extra row
// so the caller can tell whether a next page exists.
func pageWindow(number, size int) (limit, offset int) {
	return size + 1, (ClampPage(number) - 1) * size
}

func newPage[T any](rows []T, number, size int) Page[T] {
	number = ClampPage(number)
	p := Page[T]{Number: number, HasPrev: number > 1}
	if len(rows) > size {
		p.HasNext = true
		rows = rows[:size]
	}
	p.Items = rows
	return p
}
