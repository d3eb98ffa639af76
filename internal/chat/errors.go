package chat

import "errors"

var (
	// ErrNameTaken is returned when registering a display name that is
	// already in use by a live session or a web participant.
	ErrNameTaken = errors.New("display name already in use")

	// ErrSessionClosed is returned when writing to a session whose
	// transport has been released.
	ErrSessionClosed = errors.New("session is closed")
)
