package download

import (
	"context"
	"io"

	"github.com/ytget/leech-bot/internal/model"
)

// Params carries the user supplied inputs a dispatch needs.
type Params struct {
	BatchName string
	Quality   string
	Token     string
}

// Delivered describes the file handed back to the user.
type Delivered struct {
	FileName string
	Path     string
	Size     int64
}

// Dispatcher defines the interface for the dispatch service.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, link model.LinkRecord, params Params) (*Delivered, error)
}

// Fetcher fetches a PDF link over plain HTTP. A non-2xx status is an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// ResolverProber checks that the video resolver endpoint is willing to serve
// the resolved URL before the download tool is pointed at it.
type ResolverProber interface {
	Probe(ctx context.Context, resolvedURL string) error
}

// VideoTool runs the external download tool against a resolved URL and
// returns the path of the produced file.
type VideoTool interface {
	Download(ctx context.Context, resolvedURL, quality, outputDir, baseName string) (string, error)
}

// Deliverer hands a finished file to the user. The transport gateway
// implements this.
type Deliverer interface {
	Deliver(ctx context.Context, userID string, file Delivered, caption string) error
}
