package core

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int `query:"page"`
	Size   int `query:"page_size"`
}

// Clean clamps Number and Size, using defaultSize when none was requested.
func (p *Page) Clean(defaultSize int) {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > 100 {
		p.Size = 100
	}
}

type PageResult[T any] struct {
	Results    []T `json:"results"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items down to the requested page.
// A page past the end yields empty results, never nil.
func Paginate[T any](items []T, p Page) PageResult[T] {
	count := len(items)
	totalPages := 0
	if p.Size > 0 {
		totalPages = (count + p.Size - 1) / p.Size
	}
	res := PageResult[T]{Results: []T{}, Count: count, Page: p.Number, TotalPages: totalPages}
	if p.Number < 1 || p.Number > totalPages {
		return res
	}
	start := (p.Number - 1) * p.Size
	end := start + p.Size
	if end > count {
		end = count
	}
	res.Results = items[start:end]
	return res
}

// Exclude drops the items whose id is in hidden.
func Exclude[T any](items []T, hidden map[string]bool, id func(T) string) []T {
	if len(hidden) == 0 {
		return items
	}
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if !hidden[id(it)] {
			kept = append(kept, it)
		}
	}
	return kept
}
