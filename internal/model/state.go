package model

// SessionState represents the current step of a user's download flow
type SessionState string

const (
	// StateAwaitingFile means the session is waiting for a text file upload
	StateAwaitingFile SessionState = "AwaitingFile"

	// StateAwaitingSelection means links are classified and the session is
	// waiting for the user to pick one by index
	StateAwaitingSelection SessionState = "AwaitingSelection"

	// StateAwaitingBatchName means the session is waiting for an output name
	StateAwaitingBatchName SessionState = "AwaitingBatchName"

	// StateAwaitingQuality means the session is waiting for a quality choice
	StateAwaitingQuality SessionState = "AwaitingQuality"

	// StateAwaitingToken means the session is waiting for an access token.
	// Only video selections visit this state; PDF selections skip it.
	StateAwaitingToken SessionState = "AwaitingToken"

	// StateDispatching means the download dispatcher is running. The session
	// is removed once the dispatch finishes, whatever the outcome.
	StateDispatching SessionState = "Dispatching"
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// IsDispatching returns true while a download is in flight for the session
func (s SessionState) IsDispatching() bool {
	return s == StateDispatching
}

// AcceptsText returns true if the state consumes a plain text reply
func (s SessionState) AcceptsText() bool {
	switch s {
	case StateAwaitingSelection, StateAwaitingBatchName, StateAwaitingQuality, StateAwaitingToken:
		return true
	}
	return false
}
