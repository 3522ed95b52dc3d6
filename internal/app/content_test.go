package app

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		imageURL string
	}{
		{"plain text", "Hello there", ""},
		{"text with image", "What is in this picture?", "https://images.example.com/a/b.png"},
		{"empty text with image", "", "https://images.example.com/only.jpg"},
		{"multiline text", "first line\nsecond line", "http://img.example.com/x.png"},
		{"text with brackets", "not [Image] a marker", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeContent(tc.text, tc.imageURL)
			text, imageURL := DecodeContent(encoded)
			if text != tc.text {
				t.Fatalf("text mismatch: got %q want %q", text, tc.text)
			}
			if imageURL != tc.imageURL {
				t.Fatalf("image url mismatch: got %q want %q", imageURL, tc.imageURL)
			}
		})
	}
}

func TestEncodeWithoutImageReturnsTextUnchanged(t *testing.T) {
	if got := EncodeContent("  raw text  ", ""); got != "  raw text  " {
		t.Fatalf("expected text unchanged, got %q", got)
	}
}

func TestEncodeMarkerGrammar(t *testing.T) {
	got := EncodeContent("hi", "https://h.example.com/i.png")
	want := "hi\n\n[Image]: https://h.example.com/i.png"
	if got != want {
		t.Fatalf("marker grammar changed:\n got: %q\nwant: %q", got, want)
	}
}

func TestDecodeWithoutMarkerReturnsContentVerbatim(t *testing.T) {
	content := "  just text, no marker  "
	text, imageURL := DecodeContent(content)
	if text != content {
		t.Fatalf("expected verbatim content, got %q", text)
	}
	if imageURL != "" {
		t.Fatalf("expected no image url, got %q", imageURL)
	}
}

func TestDecodeIsCaseInsensitiveOnMarker(t *testing.T) {
	text, imageURL := DecodeContent("look\n\n[image]: https://x.example.com/p.jpg")
	if text != "look" {
		t.Fatalf("text mismatch: got %q", text)
	}
	if imageURL != "https://x.example.com/p.jpg" {
		t.Fatalf("image url mismatch: got %q", imageURL)
	}
}

func TestDecodeIgnoresNonHTTPMarker(t *testing.T) {
	content := "see [Image]: file:///etc/passwd"
	text, imageURL := DecodeContent(content)
	if imageURL != "" {
		t.Fatalf("expected no image url for non-http scheme, got %q", imageURL)
	}
	if text != content {
		t.Fatalf("expected verbatim content, got %q", text)
	}
}

func TestHasImageMarker(t *testing.T) {
	if !HasImageMarker("x\n\n[Image]: http://a.example.com/b") {
		t.Fatalf("expected marker to be detected")
	}
	if HasImageMarker("no marker here") {
		t.Fatalf("expected no marker")
	}
}
