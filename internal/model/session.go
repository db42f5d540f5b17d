package model

import (
	"time"
)

// Session tracks one user's in-progress multi-step download flow. At most one
// live session exists per user identity; the session store enforces that.
type Session struct {
	UserID string
	State  SessionState

	// Links is populated once when the file is classified and never mutated
	// afterwards
	Links []LinkRecord

	// SelectedIndex is a valid 1-based index into Links once set; it never
	// changes within a session lifetime
	SelectedIndex int

	BatchName string
	Quality   string
	Token     string

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// NewSession creates a session in the initial state
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:        userID,
		State:         StateAwaitingFile,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// Touch records activity so the idle sweep does not reclaim the session
func (s *Session) Touch(now time.Time) {
	s.LastUpdatedAt = now
}

// IdleFor reports how long the session has been without activity
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastUpdatedAt)
}

// Selected returns the chosen link record. The second return is false if no
// selection has been made yet.
func (s *Session) Selected() (LinkRecord, bool) {
	if s.SelectedIndex == 0 {
		return LinkRecord{}, false
	}
	for _, link := range s.Links {
		if link.Index == s.SelectedIndex {
			return link, true
		}
	}
	return LinkRecord{}, false
}

// FindLink returns the link record with the given 1-based index
func (s *Session) FindLink(index int) (LinkRecord, bool) {
	for _, link := range s.Links {
		if link.Index == index {
			return link, true
		}
	}
	return LinkRecord{}, false
}
