package download

// Package download implements the dispatch step of the flow: a direct HTTP
// fetch for PDF links, and resolver plus yt-dlp (via
// github.com/lrstanley/go-ytdlp) for video links. It owns the on-disk
// lifecycle of the fetched file: delivered to the user, then deleted.
