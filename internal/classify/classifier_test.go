package classify

import (
	"strings"
	"testing"

	"github.com/ytget/leech-bot/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line     string
		kind     model.LinkKind
		accepted bool
	}{
		{"https://x.com/a.mp4", model.LinkKindVideo, true},
		{"https://y.com/b.pdf", model.LinkKindPDF, true},
		{"https://y.com/B.PDF", model.LinkKindPDF, true},
		{"https://y.com/b.pdf?session=42", model.LinkKindPDF, true},
		{"http://plain.example/watch?v=123", model.LinkKindVideo, true},
		{"Lecture 3: https://cdn.example/lec3.pdf (notes)", model.LinkKindPDF, true},
		{"https://proxy.example/get?type=application/pdf&id=9", model.LinkKindPDF, true},
		{"", model.LinkKindUnknown, false},
		{"   ", model.LinkKindUnknown, false},
		{"not a url", model.LinkKindUnknown, false},
		{"ftp://old.example/file.pdf", model.LinkKindUnknown, false},
	}

	for _, test := range tests {
		record, ok := Classify(test.line)
		if ok != test.accepted {
			t.Errorf("Classify(%q) accepted = %v, expected %v", test.line, ok, test.accepted)
			continue
		}
		if ok && record.Kind != test.kind {
			t.Errorf("Classify(%q) kind = %s, expected %s", test.line, record.Kind, test.kind)
		}
	}
}

func TestAll_IndicesAndDrops(t *testing.T) {
	text := strings.Join([]string{
		"https://x.com/a.mp4",
		"https://y.com/b.pdf",
		"",
		"not a url",
	}, "\n")

	links := All(text)

	if len(links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(links))
	}

	if links[0].Index != 1 || links[0].Kind != model.LinkKindVideo {
		t.Errorf("Expected {index:1, kind:video}, got {index:%d, kind:%s}", links[0].Index, links[0].Kind)
	}

	if links[1].Index != 2 || links[1].Kind != model.LinkKindPDF {
		t.Errorf("Expected {index:2, kind:pdf}, got {index:%d, kind:%s}", links[1].Index, links[1].Kind)
	}

	summary := Summarize(links)
	if summary.String() != "1 video, 1 pdf" {
		t.Errorf("Expected summary '1 video, 1 pdf', got '%s'", summary.String())
	}
}

func TestAll_IndicesStrictlyIncreasing(t *testing.T) {
	text := strings.Join([]string{
		"https://a.example/1.mp4",
		"",
		"https://a.example/2.pdf",
		"junk line",
		"https://a.example/3.mp4",
		"   ",
		"https://a.example/4.mp4",
	}, "\n")

	links := All(text)

	if len(links) != 4 {
		t.Fatalf("Expected 4 links, got %d", len(links))
	}

	for i, link := range links {
		if link.Index != i+1 {
			t.Errorf("Expected index %d at position %d, got %d", i+1, i, link.Index)
		}
	}
}

func TestAll_Idempotent(t *testing.T) {
	text := "https://x.com/a.mp4\nhttps://y.com/b.pdf\n"

	first := Summarize(All(text))
	second := Summarize(All(text))

	if first != second {
		t.Errorf("Expected identical summaries for identical input, got %+v and %+v", first, second)
	}
}

func TestAll_InvalidUTF8(t *testing.T) {
	// latin-1 encoded title bytes around an ASCII URL
	text := "r\xe9sum\xe9 https://y.com/cv.pdf\n"

	links := All(text)

	if len(links) != 1 {
		t.Fatalf("Expected 1 link, got %d", len(links))
	}
	if links[0].RawURL != "https://y.com/cv.pdf" {
		t.Errorf("Expected URL to survive lossy decode, got '%s'", links[0].RawURL)
	}
}

func TestAll_CarriageReturns(t *testing.T) {
	text := "https://x.com/a.mp4\r\nhttps://y.com/b.pdf\r\n"

	links := All(text)

	if len(links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(links))
	}
	if strings.HasSuffix(links[0].RawURL, "\r") {
		t.Error("Expected carriage return to be trimmed from URL")
	}
}
