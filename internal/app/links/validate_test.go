package links

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeShortName_Canonicalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"docs", "docs"},
		{"My-Link_1", "my-link_1"},
		{"  padded  ", "padded"},
		{"ABC", "abc"},
	}
	for _, tc := range cases {
		got, err := NormalizeShortName(tc.in)
		if err != nil {
			t.Fatalf("NormalizeShortName(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeShortName(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeShortName_Idempotent(t *testing.T) {
	once, err := NormalizeShortName("  Mixed-Case_Name  ")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := NormalizeShortName(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeShortName_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		detail string
	}{
		{"empty", "", "short_name cannot be empty"},
		{"whitespace only", "   ", "short_name cannot be empty"},
		{"too long", strings.Repeat("a", 51), "short_name cannot be longer than 50 ch."},
		{"too long multibyte", strings.Repeat("é", 51), "short_name cannot be longer than 50 ch."},
		{"bad rune", "hello world", "short_name can only contain a-z, 0-9, -, _"},
		{"unicode", "héllo", "short_name can only contain a-z, 0-9, -, _"},
		// 30 runes but 60 bytes: the length check counts runes, so
		// this must fail on the charset rule, not the length one.
		{"multibyte under limit", strings.Repeat("é", 30), "short_name can only contain a-z, 0-9, -, _"},
		{"separators only", "-_-", "short_name can only contain a-z, 0-9, -, _"},
		{"slash", "a/b", "short_name can only contain a-z, 0-9, -, _"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeShortName(tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want *ValidationError", err)
			}
			if verr.Detail != tc.detail {
				t.Fatalf("detail: got %q, want %q", verr.Detail, tc.detail)
			}
		})
	}
}

func TestNormalizeShortName_MaxLengthBoundary(t *testing.T) {
	exactly := strings.Repeat("a", 50)
	got, err := NormalizeShortName(exactly)
	if err != nil {
		t.Fatalf("50-char name rejected: %v", err)
	}
	if got != exactly {
		t.Fatalf("got %q, want %q", got, exactly)
	}
}

func TestValidateOriginalURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.com:8443/a/b",
	}
	for _, u := range valid {
		if err := ValidateOriginalURL(u); err != nil {
			t.Fatalf("ValidateOriginalURL(%q): unexpected error %v", u, err)
		}
	}

	cases := []struct {
		in     string
		detail string
	}{
		{"", "original_url must use the http or https scheme"},
		{"not a url", "original_url must use the http or https scheme"},
		{"ftp://example.com/file", "original_url must use the http or https scheme"},
		{"https://", "original_url must be a valid absolute URL"},
		{"/relative/path", "original_url must use the http or https scheme"},
	}
	for _, tc := range cases {
		err := ValidateOriginalURL(tc.in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("ValidateOriginalURL(%q): got %v, want *ValidationError", tc.in, err)
		}
		if verr.Detail != tc.detail {
			t.Fatalf("ValidateOriginalURL(%q): detail %q, want %q", tc.in, verr.Detail, tc.detail)
		}
	}
}
