package urlutil

import (
	"net/url"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
		"https://www.amazon.in/s?k={query}",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestAbsolute(t *testing.T) {
	base, _ := url.Parse("https://www.shop.example/search?q=shirt")
	tests := []struct {
		href string
		want string
	}{
		{"/p/123?size=m#reviews", "https://www.shop.example/p/123?size=m"},
		{"//cdn.shop.example/a.jpg", "https://cdn.shop.example/a.jpg"},
		{"  https://other.example/x  ", "https://other.example/x"},
		{"#", ""},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"JavaScript:open()", ""},
		{"mailto:help@shop.example", ""},
		{"tel:+911234", ""},
		{"data:image/png;base64,AAAA", ""},
		{"ftp://files.example/a", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Absolute(base, tt.href); got != tt.want {
			t.Errorf("Absolute(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}

	if got := Absolute(nil, "/relative"); got != "" {
		t.Errorf("relative href without base should not resolve, got %q", got)
	}
}

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://www.Amazon.in/s?k=x":  "amazon.in",
		"https://shop.example:8443/a":  "shop.example",
		"http://127.0.0.1:9000/search": "127.0.0.1",
		"not a url":                    "",
	}
	for in, want := range tests {
		if got := Host(in); got != want {
			t.Errorf("Host(%q) = %q, want %q", in, got, want)
		}
	}
}
