package urlutil

import (
	"net/url"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "fragment removed",
			input:    "https://shop.example.com/list#top",
			expected: "https://shop.example.com/list",
		},
		{
			name:     "query parameters kept",
			input:    "https://shop.example.com/list?page=2",
			expected: "https://shop.example.com/list?page=2",
		},
		{
			name:     "query keys sorted",
			input:    "https://shop.example.com/list?page=2&cat=shoes",
			expected: "https://shop.example.com/list?cat=shoes&page=2",
		},
		{
			name:     "scheme and host lowercased",
			input:    "HTTPS://SHOP.EXAMPLE.COM/List",
			expected: "https://shop.example.com/List",
		},
		{
			name:     "default http port removed",
			input:    "http://shop.example.com:80/list",
			expected: "http://shop.example.com/list",
		},
		{
			name:     "default https port removed",
			input:    "https://shop.example.com:443/list",
			expected: "https://shop.example.com/list",
		},
		{
			name:     "non-default port kept",
			input:    "http://127.0.0.1:8080/list",
			expected: "http://127.0.0.1:8080/list",
		},
		{
			name:     "empty path becomes root",
			input:    "https://shop.example.com",
			expected: "https://shop.example.com/",
		},
		{
			name:     "semicolon query kept verbatim",
			input:    "https://example.com/item?id=1;v=a",
			expected: "https://example.com/item?id=1;v=a",
		},
		{
			name:     "badly escaped query kept verbatim",
			input:    "https://example.com/item?q=%zz1",
			expected: "https://example.com/item?q=%zz1",
		},
		{
			name:     "trailing question mark dropped",
			input:    "https://shop.example.com/list?",
			expected: "https://shop.example.com/list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalString(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CanonicalString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://Shop.Example.com:443/list?b=2&a=1#frag",
		"http://example.com",
	}
	for _, in := range inputs {
		once, err := CanonicalString(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := CanonicalString(once)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestCanonicalizeDoesNotMutateInput(t *testing.T) {
	original, _ := url.Parse("HTTPS://EXAMPLE.COM/list?b=1&a=2#x")
	snapshot := original.String()

	_ = Canonicalize(*original)

	if original.String() != snapshot {
		t.Errorf("input mutated: %q -> %q", snapshot, original.String())
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		param     string
		page      int
		expected  string
		expectErr bool
	}{
		{
			name:     "query parameter appended",
			base:     "https://example.com/list",
			param:    "page",
			page:     1,
			expected: "https://example.com/list?page=1",
		},
		{
			name:     "existing query preserved",
			base:     "https://example.com/list?cat=books",
			param:    "page",
			page:     3,
			expected: "https://example.com/list?cat=books&page=3",
		},
		{
			name:     "existing page parameter replaced",
			base:     "https://example.com/list?page=9",
			param:    "page",
			page:     2,
			expected: "https://example.com/list?page=2",
		},
		{
			name:     "unparseable pairs kept as written",
			base:     "https://example.com/list?filter=a;b&sort=new",
			param:    "page",
			page:     2,
			expected: "https://example.com/list?filter=a;b&sort=new&page=2",
		},
		{
			name:     "page replaced in place and repeats dropped",
			base:     "https://example.com/list?sort=new&page=1&q=%zz&page=7",
			param:    "page",
			page:     3,
			expected: "https://example.com/list?sort=new&page=3&q=%zz",
		},
		{
			name:     "pair order untouched",
			base:     "https://example.com/list?z=1&a=2",
			param:    "page",
			page:     1,
			expected: "https://example.com/list?z=1&a=2&page=1",
		},
		{
			name:     "path placeholder substituted",
			base:     "https://example.com/blog/page/{page}",
			param:    "",
			page:     4,
			expected: "https://example.com/blog/page/4",
		},
		{
			name:      "missing param without placeholder",
			base:      "https://example.com/list",
			param:     "",
			page:      1,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(tt.base, tt.param, tt.page)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("PageURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCanonicalize_DistinctUnparseableQueriesStayDistinct(t *testing.T) {
	pairs := [][2]string{
		{"https://example.com/item?id=1;v=a", "https://example.com/item?id=2;v=b"},
		{"https://example.com/item?q=%zz1", "https://example.com/item?q=%zz2"},
	}
	for _, pair := range pairs {
		a, err := CanonicalString(pair[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := CanonicalString(pair[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a == b {
			t.Errorf("%q and %q share canonical form %q", pair[0], pair[1], a)
		}
	}
}

func TestLowerASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"ABC", "abc"},
		{"MiXeD-123", "mixed-123"},
	}
	for _, tt := range tests {
		if got := lowerASCII(tt.in); got != tt.want {
			t.Errorf("lowerASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
