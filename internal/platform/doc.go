package platform

// Package platform contains filesystem glue for the download pipeline:
// directory setup, per-dispatch workspaces, and cleanup helpers.
