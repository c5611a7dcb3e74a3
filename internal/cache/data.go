package cache

import (
	"time"

	"github.com/rohmanhakim/page-scraper/pkg/hashutil"
	"github.com/rohmanhakim/page-scraper/pkg/urlutil"
)

// FetchKey identifies one cached extraction: a canonical URL plus the selector
// applied to it. Equal keys are interchangeable. FetchKey is a comparable value
// and cannot be modified after construction.
type FetchKey struct {
	url      string
	selector string
	id       string
}

// NewFetchKey canonicalizes rawURL so equivalent spellings (host case,
// default port, fragment, query order) share one key. A URL that cannot be
// parsed is used verbatim.
func NewFetchKey(rawURL string, selector string) FetchKey {
	canonical, err := urlutil.CanonicalString(rawURL)
	if err != nil {
		canonical = rawURL
	}
	return FetchKey{
		url:      canonical,
		selector: selector,
		id:       hashutil.DigestStrings(canonical, selector),
	}
}

func (k FetchKey) URL() string {
	return k.url
}

func (k FetchKey) Selector() string {
	return k.selector
}

// ID is a stable hex digest of the URL and selector, used as the storage key.
func (k FetchKey) ID() string {
	return k.id
}

func (k FetchKey) String() string {
	return k.url + " " + k.selector
}

// Entry is one cached extraction result. The item slice is copied on the way
// in and on the way out, so callers can never alias the cache's storage.
type Entry struct {
	items     []string
	createdAt time.Time
}

func NewEntry(items []string, createdAt time.Time) Entry {
	return Entry{
		items:     copyItems(items),
		createdAt: createdAt,
	}
}

// Items returns a fresh copy of the cached items. It is never nil.
func (e Entry) Items() []string {
	return copyItems(e.items)
}

func (e Entry) Len() int {
	return len(e.items)
}

func (e Entry) CreatedAt() time.Time {
	return e.createdAt
}

func copyItems(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
