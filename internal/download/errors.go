package download

import (
	"errors"
	"fmt"
)

// Stage names the part of a dispatch that failed. Terminal failure messages
// surface it to the user.
type Stage string

const (
	// StageFetch is the direct HTTP fetch of a PDF link
	StageFetch Stage = "fetch"

	// StageResolver is the external video resolver endpoint
	StageResolver Stage = "resolver"

	// StageTool is the external download tool run
	StageTool Stage = "download tool"

	// StageDisk is writing the output file
	StageDisk Stage = "disk"

	// StageDeliver is handing the finished file back to the user
	StageDeliver Stage = "delivery"
)

// Error wraps a dispatch failure with the stage it happened in.
type Error struct {
	Stage Stage
	Err   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &Error{Stage: stage, Err: err}
}

// StageOf extracts the failed stage from a dispatch error. The second return
// is false when err does not carry stage information.
func StageOf(err error) (Stage, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Stage, true
	}
	return "", false
}
