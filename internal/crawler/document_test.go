package crawler

import (
	"strings"
	"testing"
)

func TestHTMLDocumentText(t *testing.T) {
	t.Parallel()

	t.Run("collects visible text with whitespace collapsed", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>T</title><style>.x{color:red}</style><script>var a = 1;</script></head>` +
			`<body><p>Hello   <b>world</b></p>
			<noscript>enable js</noscript><template><p>hidden</p></template></body></html>`

		doc, err := NewHTMLDocument(strings.NewReader(page), "http://example.com/")
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if got := doc.Text(); got != "T Hello world" {
			t.Errorf("expected %q, got %q", "T Hello world", got)
		}
	})

	t.Run("text split across elements is joined with a space", func(t *testing.T) {
		t.Parallel()

		page := `<ul><li>one</li><li>two</li></ul>`
		doc, err := NewHTMLDocument(strings.NewReader(page), "http://example.com/")
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if got := doc.Text(); got != "one two" {
			t.Errorf("expected %q, got %q", "one two", got)
		}
	})

	t.Run("comments are not text", func(t *testing.T) {
		t.Parallel()

		page := `<body><!-- secret -->visible</body>`
		doc, err := NewHTMLDocument(strings.NewReader(page), "http://example.com/")
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if got := doc.Text(); got != "visible" {
			t.Errorf("expected %q, got %q", "visible", got)
		}
	})
}

func TestHTMLDocumentLinks(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<a href="other.html">relative</a>
		<a href="/root">root relative</a>
		<a>no href</a>
		<a href="https://x.com/">absolute</a>
		<a href="   ">blank</a>
		<a href="#frag">fragment</a>
		<a href="mailto:a@b.com">mail</a>
		<a href="http://%zz">broken</a>
	</body></html>`

	doc, err := NewHTMLDocument(strings.NewReader(page), "http://example.com/dir/page.html")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	want := []string{
		"http://example.com/dir/other.html",
		"http://example.com/root",
		"https://x.com/",
		"",
		"http://example.com/dir/page.html#frag",
		"mailto:a@b.com",
		"",
	}

	got := doc.Links()
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNewHTMLDocumentInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := NewHTMLDocument(strings.NewReader("<p>x</p>"), "http://[::1"); err == nil {
		t.Error("expected error for invalid base URL")
	}
}
