package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrNotMember          = fmt.Errorf("not a member of this room")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrNotOwner           = fmt.Errorf("not the author of this message")
	ErrNotStarred         = fmt.Errorf("message was not starred")
	ErrAlreadyStarred     = fmt.Errorf("message already starred")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrUnsupportedPayload = fmt.Errorf("unsupported payload")
	ErrInvalidImage       = fmt.Errorf("invalid image")
	ErrUnknownCommand     = fmt.Errorf("unknown command")
	ErrSinkFull           = fmt.Errorf("connection queue is full")
	ErrConnectionUnknown  = fmt.Errorf("connection unknown")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)

// reasons are the texts shown to the requester in an error notification.
var reasons = []struct {
	err    error
	reason string
}{
	{ErrRoomNotFound, "Room does not exist"},
	{ErrNotMember, "You are not a member of this room"},
	{ErrMessageNotFound, "Message does not exist"},
	{ErrNotOwner, "You can only modify your own messages"},
	{ErrNotStarred, "Message was not starred"},
	{ErrUnsupportedPayload, "This kind of event cannot be sent"},
	{ErrInvalidImage, "Image is invalid"},
	{ErrUnknownCommand, "Unknown request"},
}

// Reason maps err to a human-readable text for the requester.
// Validation failures keep their detail, anything else is reported generically.
func Reason(err error) string {
	for _, r := range reasons {
		if goerrors.Is(err, r.err) {
			return r.reason
		}
	}
	if goerrors.Is(err, ErrInvalidRequest) {
		return err.Error()
	}
	return "Request failed"
}

// IsSilent reports rejections resolved as a no-op without notifying the requester.
func IsSilent(err error) bool {
	return goerrors.Is(err, ErrAlreadyStarred)
}

func Is(err, target error) bool {
	return goerrors.Is(err, target)
}
