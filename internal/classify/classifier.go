package classify

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ytget/leech-bot/internal/model"
)

// URL detection constants
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"

	PDFExtension = ".pdf"

	// PDFMarker also marks a link as PDF when it appears anywhere in the URL,
	// e.g. proxy links carrying a content-type parameter
	PDFMarker = "application/pdf"
)

// urlPattern detects URLs anywhere in a line, not only lines that are exactly
// a URL. Link files in the wild carry titles and numbering around the links.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Classify inspects a single line of text and returns its link record without
// an index assigned. The second return is false for blank lines, lines with no
// detectable URL, and candidates that do not parse as absolute http(s) URLs.
func Classify(line string) (model.LinkRecord, bool) {
	raw := urlPattern.FindString(line)
	if raw == "" {
		return model.LinkRecord{}, false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return model.LinkRecord{}, false
	}
	if parsed.Scheme != SchemeHTTP && parsed.Scheme != SchemeHTTPS {
		return model.LinkRecord{}, false
	}
	if parsed.Host == "" {
		return model.LinkRecord{}, false
	}

	kind := model.LinkKindVideo
	if isPDF(parsed, raw) {
		kind = model.LinkKindPDF
	}

	return model.LinkRecord{RawURL: raw, Kind: kind}, true
}

// All classifies every line of the uploaded file text, preserving input order
// and assigning 1-based indices to the accepted records. Blank and non-URL
// lines are dropped, not indexed.
func All(text string) []model.LinkRecord {
	lines := strings.Split(decode(text), "\n")

	links := make([]model.LinkRecord, 0, len(lines))
	for _, line := range lines {
		record, ok := Classify(strings.TrimSpace(line))
		if !ok {
			continue
		}
		record.Index = len(links) + 1
		links = append(links, record)
	}
	return links
}

// Summarize counts links by kind for the human-readable summary prompt
func Summarize(links []model.LinkRecord) model.ClassificationSummary {
	var summary model.ClassificationSummary
	for _, link := range links {
		switch link.Kind {
		case model.LinkKindPDF:
			summary.PDFs++
		default:
			summary.Videos++
		}
	}
	return summary
}

// isPDF reports whether the URL points at a PDF document. The path extension
// check is case-insensitive; query parameters do not defeat it because the
// check runs on the parsed path component.
func isPDF(parsed *url.URL, raw string) bool {
	if strings.EqualFold(path.Ext(parsed.Path), PDFExtension) {
		return true
	}
	return strings.Contains(strings.ToLower(raw), PDFMarker)
}

// decode repairs file text that was not valid UTF-8. Uploaded files come in
// arbitrary encodings; invalid bytes are dropped so latin-1 style content
// still yields usable ASCII URLs.
func decode(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
