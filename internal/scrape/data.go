package scrape

// Result is the ordered sequence of extracted values of one page. Every call
// returns a fresh slice owned by the caller.
type Result []string

// Outcome is the single value delivered on the channel of an asynchronous scrape.
type Outcome struct {
	Result Result
	Err    error
}

type PageResult struct {
	Page  int
	URL   string
	Items Result
}

// PaginatedResult holds the pages of a paginated run in page order.
type PaginatedResult struct {
	Pages []PageResult
}

// Items concatenates the items of every page, preserving page order and
// in-page order.
func (p PaginatedResult) Items() Result {
	total := 0
	for _, page := range p.Pages {
		total += len(page.Items)
	}
	items := make(Result, 0, total)
	for _, page := range p.Pages {
		items = append(items, page.Items...)
	}
	return items
}

func (p PaginatedResult) PageCount() int {
	return len(p.Pages)
}
