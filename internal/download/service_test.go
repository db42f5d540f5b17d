package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ytget/leech-bot/internal/config"
	"github.com/ytget/leech-bot/internal/model"
)

type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type fakeProber struct {
	err  error
	urls []string
}

func (p *fakeProber) Probe(ctx context.Context, resolvedURL string) error {
	p.urls = append(p.urls, resolvedURL)
	return p.err
}

type fakeTool struct {
	err   error
	calls int
	urls  []string
}

func (t *fakeTool) Download(ctx context.Context, resolvedURL, quality, outputDir, baseName string) (string, error) {
	t.calls++
	t.urls = append(t.urls, resolvedURL)
	if t.err != nil {
		return "", t.err
	}
	path := filepath.Join(outputDir, baseName+"_abc123.mp4")
	if err := os.WriteFile(path, []byte("video-bytes"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeDeliverer struct {
	err      error
	files    []Delivered
	captions []string
	// existedAtDelivery records whether the file was still on disk when the
	// deliverer got it
	existedAtDelivery []bool
}

func (d *fakeDeliverer) Deliver(ctx context.Context, userID string, file Delivered, caption string) error {
	if d.err != nil {
		return d.err
	}
	_, statErr := os.Stat(file.Path)
	d.existedAtDelivery = append(d.existedAtDelivery, statErr == nil)
	d.files = append(d.files, file)
	d.captions = append(d.captions, caption)
	return nil
}

func newTestService(t *testing.T, fetcher Fetcher, prober ResolverProber, tool VideoTool, deliverer Deliverer) *Service {
	t.Helper()
	cfg := &config.Config{
		ResolverEndpoint: "https://resolver.example/pw",
		DownloadDir:      t.TempDir(),
	}
	return NewService(cfg, fetcher, prober, tool, deliverer, zerolog.Nop())
}

func workspaceCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Expected readable download dir, got %v", err)
	}
	return len(entries)
}

func TestDispatch_PDF(t *testing.T) {
	fetcher := &fakeFetcher{body: "%PDF-1.4 data"}
	deliverer := &fakeDeliverer{}
	service := newTestService(t, fetcher, &fakeProber{}, &fakeTool{}, deliverer)

	link := model.LinkRecord{Index: 2, RawURL: "https://y.com/b.pdf", Kind: model.LinkKindPDF}
	params := Params{BatchName: "physics", Quality: "480"}

	delivered, err := service.Dispatch(context.Background(), "user-1", link, params)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if delivered.FileName != "physics_2.pdf" {
		t.Errorf("Expected file name 'physics_2.pdf', got '%s'", delivered.FileName)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://y.com/b.pdf" {
		t.Errorf("Expected direct fetch of the raw URL, got %v", fetcher.urls)
	}
	if len(deliverer.captions) != 1 || deliverer.captions[0] != "Batch: physics | Index: 2" {
		t.Errorf("Expected delivery caption 'Batch: physics | Index: 2', got %v", deliverer.captions)
	}
	if len(deliverer.existedAtDelivery) != 1 || !deliverer.existedAtDelivery[0] {
		t.Error("Expected file to exist on disk at delivery time")
	}
	if count := workspaceCount(t, service.downloadDir); count != 0 {
		t.Errorf("Expected workspace to be removed after dispatch, %d entries remain", count)
	}
}

func TestDispatch_PDFFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("status 404")}
	service := newTestService(t, fetcher, &fakeProber{}, &fakeTool{}, &fakeDeliverer{})

	link := model.LinkRecord{Index: 1, RawURL: "https://y.com/gone.pdf", Kind: model.LinkKindPDF}

	_, err := service.Dispatch(context.Background(), "user-1", link, Params{BatchName: "b"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if stage, ok := StageOf(err); !ok || stage != StageFetch {
		t.Errorf("Expected fetch stage, got %v (tagged=%v)", stage, ok)
	}
	if count := workspaceCount(t, service.downloadDir); count != 0 {
		t.Errorf("Expected workspace cleanup on failure, %d entries remain", count)
	}
}

func TestDispatch_Video(t *testing.T) {
	prober := &fakeProber{}
	tool := &fakeTool{}
	deliverer := &fakeDeliverer{}
	service := newTestService(t, &fakeFetcher{}, prober, tool, deliverer)

	link := model.LinkRecord{Index: 1, RawURL: "https://x.com/a.mp4", Kind: model.LinkKindVideo}
	params := Params{BatchName: "lectures", Quality: "720", Token: "tok en"}

	delivered, err := service.Dispatch(context.Background(), "user-1", link, params)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := "https://resolver.example/pw?url=https%3A%2F%2Fx.com%2Fa.mp4&token=tok+en"
	if len(prober.urls) != 1 || prober.urls[0] != expected {
		t.Errorf("Expected prober to see resolved URL %q, got %v", expected, prober.urls)
	}
	if len(tool.urls) != 1 || tool.urls[0] != expected {
		t.Errorf("Expected tool to see resolved URL %q, got %v", expected, tool.urls)
	}
	if delivered.FileName != "lectures_abc123.mp4" {
		t.Errorf("Expected file name 'lectures_abc123.mp4', got '%s'", delivered.FileName)
	}
	if delivered.Size != int64(len("video-bytes")) {
		t.Errorf("Expected size %d, got %d", len("video-bytes"), delivered.Size)
	}
}

func TestDispatch_VideoResolverError(t *testing.T) {
	prober := &fakeProber{err: errors.New("endpoint returned status 502")}
	tool := &fakeTool{}
	service := newTestService(t, &fakeFetcher{}, prober, tool, &fakeDeliverer{})

	link := model.LinkRecord{Index: 1, RawURL: "https://x.com/a.mp4", Kind: model.LinkKindVideo}

	_, err := service.Dispatch(context.Background(), "user-1", link, Params{BatchName: "b", Quality: "480"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if stage, ok := StageOf(err); !ok || stage != StageResolver {
		t.Errorf("Expected resolver stage, got %v (tagged=%v)", stage, ok)
	}
	if tool.calls != 0 {
		t.Errorf("Expected tool to not run after resolver failure, got %d calls", tool.calls)
	}
}

func TestDispatch_VideoToolError(t *testing.T) {
	tool := &fakeTool{err: errors.New("exit status 1")}
	service := newTestService(t, &fakeFetcher{}, &fakeProber{}, tool, &fakeDeliverer{})

	link := model.LinkRecord{Index: 1, RawURL: "https://x.com/a.mp4", Kind: model.LinkKindVideo}

	_, err := service.Dispatch(context.Background(), "user-1", link, Params{BatchName: "b", Quality: "480"})
	if stage, ok := StageOf(err); !ok || stage != StageTool {
		t.Errorf("Expected download tool stage, got %v (tagged=%v)", stage, ok)
	}
}

func TestDispatch_DeliverError(t *testing.T) {
	deliverer := &fakeDeliverer{err: errors.New("chat unreachable")}
	service := newTestService(t, &fakeFetcher{body: "pdf"}, &fakeProber{}, &fakeTool{}, deliverer)

	link := model.LinkRecord{Index: 1, RawURL: "https://y.com/b.pdf", Kind: model.LinkKindPDF}

	_, err := service.Dispatch(context.Background(), "user-1", link, Params{BatchName: "b"})
	if stage, ok := StageOf(err); !ok || stage != StageDeliver {
		t.Errorf("Expected delivery stage, got %v (tagged=%v)", stage, ok)
	}
	if count := workspaceCount(t, service.downloadDir); count != 0 {
		t.Errorf("Expected workspace cleanup after delivery failure, %d entries remain", count)
	}
}

func TestResolvedURL(t *testing.T) {
	result := ResolvedURL("https://resolver.example/pw", "https://x.com/a?b=c", "t&k")
	expected := "https://resolver.example/pw?url=https%3A%2F%2Fx.com%2Fa%3Fb%3Dc&token=t%26k"
	if result != expected {
		t.Errorf("ResolvedURL = %q, expected %q", result, expected)
	}
}

func TestStageOf(t *testing.T) {
	if _, ok := StageOf(errors.New("plain")); ok {
		t.Error("Expected plain errors to carry no stage")
	}

	wrapped := fmt.Errorf("dispatch: %w", stageErr(StageDisk, errors.New("quota exceeded")))
	stage, ok := StageOf(wrapped)
	if !ok || stage != StageDisk {
		t.Errorf("Expected disk stage through wrapping, got %v (tagged=%v)", stage, ok)
	}
}
