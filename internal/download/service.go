package download

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/leech-bot/internal/config"
	"github.com/ytget/leech-bot/internal/metrics"
	"github.com/ytget/leech-bot/internal/model"
	"github.com/ytget/leech-bot/internal/platform"
)

// Outcome labels for dispatch metrics
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Service handles dispatch operations
type Service struct {
	resolverEndpoint string
	downloadDir      string

	fetcher   Fetcher
	prober    ResolverProber
	tool      VideoTool
	deliverer Deliverer

	log zerolog.Logger
}

// NewService creates a new dispatch service
func NewService(cfg *config.Config, fetcher Fetcher, prober ResolverProber, tool VideoTool, deliverer Deliverer, log zerolog.Logger) *Service {
	return &Service{
		resolverEndpoint: cfg.ResolverEndpoint,
		downloadDir:      cfg.DownloadDir,
		fetcher:          fetcher,
		prober:           prober,
		tool:             tool,
		deliverer:        deliverer,
		log:              log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch fetches the selected link, hands the file to the user, and removes
// it from disk. The returned Delivered describes a file that no longer exists
// locally by the time Dispatch returns.
func (s *Service) Dispatch(ctx context.Context, userID string, link model.LinkRecord, params Params) (*Delivered, error) {
	start := time.Now()

	delivered, err := s.dispatch(ctx, userID, link, params)

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	metrics.DispatchesTotal.WithLabelValues(link.Kind.String(), status).Inc()
	metrics.DispatchDuration.WithLabelValues(link.Kind.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Int("index", link.Index).Msg("dispatch failed")
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int("index", link.Index).
		Str("kind", link.Kind.String()).
		Str("file", delivered.FileName).
		Int64("bytes", delivered.Size).
		Dur("elapsed", time.Since(start)).
		Msg("dispatch completed")
	return delivered, nil
}

func (s *Service) dispatch(ctx context.Context, userID string, link model.LinkRecord, params Params) (*Delivered, error) {
	workspace, err := platform.NewWorkspace(s.downloadDir)
	if err != nil {
		return nil, stageErr(StageDisk, err)
	}
	// The workspace goes away whatever happens; files never accumulate
	// across dispatches.
	defer platform.RemoveQuiet(workspace)

	var path string
	switch link.Kind {
	case model.LinkKindPDF:
		path, err = s.fetchPDF(ctx, link, params, workspace)
	default:
		path, err = s.downloadVideo(ctx, link, params, workspace)
	}
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, stageErr(StageDisk, err)
	}

	delivered := Delivered{
		FileName: filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
	}
	caption := fmt.Sprintf("Batch: %s | Index: %d", params.BatchName, link.Index)
	if err := s.deliverer.Deliver(ctx, userID, delivered, caption); err != nil {
		return nil, stageErr(StageDeliver, err)
	}
	return &delivered, nil
}

// fetchPDF streams the PDF link straight to disk
func (s *Service) fetchPDF(ctx context.Context, link model.LinkRecord, params Params, workspace string) (string, error) {
	body, err := s.fetcher.Fetch(ctx, link.RawURL)
	if err != nil {
		return "", stageErr(StageFetch, err)
	}
	defer body.Close()

	name := fmt.Sprintf("%s_%d.pdf", params.BatchName, link.Index)
	path := filepath.Join(workspace, name)

	out, err := os.Create(path)
	if err != nil {
		return "", stageErr(StageDisk, err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		return "", stageErr(StageDisk, err)
	}
	if err := out.Close(); err != nil {
		return "", stageErr(StageDisk, err)
	}
	return path, nil
}

// downloadVideo probes the resolver, then hands the resolved URL to the tool
func (s *Service) downloadVideo(ctx context.Context, link model.LinkRecord, params Params, workspace string) (string, error) {
	resolved := ResolvedURL(s.resolverEndpoint, link.RawURL, params.Token)

	if err := s.prober.Probe(ctx, resolved); err != nil {
		return "", stageErr(StageResolver, err)
	}

	path, err := s.tool.Download(ctx, resolved, params.Quality, workspace, params.BatchName)
	if err != nil {
		return "", stageErr(StageTool, err)
	}
	return path, nil
}

// ResolvedURL combines the resolver endpoint with the original link and the
// user token as query parameters.
func ResolvedURL(endpoint, rawURL, token string) string {
	return fmt.Sprintf("%s?url=%s&token=%s", endpoint, url.QueryEscape(rawURL), url.QueryEscape(token))
}
