package model

// Package model defines domain data structures used across the bot: per-user
// sessions, classified link records, and state enums. Structures are designed
// for direct use by the state machine and explicit state transitions.
