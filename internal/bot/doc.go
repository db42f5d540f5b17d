package bot

// Package bot is the Telegram transport gateway. It consumes updates from the
// Bot API, routes commands, text and documents into the session machine, and
// sends replies and finished files back. Everything Telegram specific stays
// in this package.
