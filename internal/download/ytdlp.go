package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"github.com/ytget/leech-bot/internal/config"
)

// yt-dlp format selectors per quality choice
const (
	Format480 = "bestvideo[height<=480]+bestaudio/best"
	Format720 = "bestvideo[height<=720]+bestaudio/best"
)

// Output naming
const (
	OutputTemplateSuffix = "_%(id)s.%(ext)s"
)

// Retry behavior for tool runs
const (
	RetryBackoff = 2 * time.Second
)

// Partial files yt-dlp leaves behind mid-download
var (
	PartialExtensions = []string{".part", ".ytdl"}
)

// YTDLPTool drives yt-dlp for video downloads.
type YTDLPTool struct {
	retries int
	log     zerolog.Logger
}

// NewYTDLPTool creates a video tool that retries failed runs.
func NewYTDLPTool(retries int, log zerolog.Logger) *YTDLPTool {
	if retries < 0 {
		retries = 0
	}
	return &YTDLPTool{
		retries: retries,
		log:     log.With().Str("component", "ytdlp").Logger(),
	}
}

// Download runs yt-dlp against the resolved URL and returns the path of the
// produced file inside outputDir.
func (t *YTDLPTool) Download(ctx context.Context, resolvedURL, quality, outputDir, baseName string) (string, error) {
	dl := ytdlp.New().
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Format(formatForQuality(quality)).
		Output(filepath.Join(outputDir, baseName+OutputTemplateSuffix))

	result, err := t.runWithRetry(ctx, dl, resolvedURL)
	if err != nil {
		return "", err
	}

	if path := extractedPath(result); path != "" {
		return path, nil
	}

	// yt-dlp did not report the file path; fall back to the largest file in
	// the workspace
	path, err := largestFile(outputDir)
	if err != nil {
		return "", fmt.Errorf("could not determine downloaded file path: %w", err)
	}
	return path, nil
}

// runWithRetry attempts the tool run with backoff between attempts
func (t *YTDLPTool) runWithRetry(ctx context.Context, dl *ytdlp.Command, resolvedURL string) (*ytdlp.Result, error) {
	var lastErr error

	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			t.log.Info().Int("attempt", attempt+1).Msg("retrying download")
		}

		result, err := dl.Run(ctx, resolvedURL)
		if err == nil {
			return result, nil
		}

		lastErr = err
		t.log.Warn().Err(err).Int("attempt", attempt+1).Msg("download attempt failed")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// extractedPath pulls the output path out of the tool result, if reported
func extractedPath(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ""
	}
	if info[0].Filename != nil {
		return *info[0].Filename
	}
	return ""
}

// largestFile returns the biggest non-partial file in dir
func largestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var best string
	var bestSize int64 = -1
	for _, entry := range entries {
		if entry.IsDir() || isPartial(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no output files in %s", dir)
	}
	return best, nil
}

func isPartial(name string) bool {
	for _, ext := range PartialExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func formatForQuality(quality string) string {
	if quality == config.Quality720 {
		return Format720
	}
	return Format480
}
