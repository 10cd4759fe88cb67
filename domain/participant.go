// Package domain contains core concepts of the chat system.
// This file defines room participants as seen by other members.
// No runtime, network, or UI logic should be added here.
package domain

// Member is a room participant with its display name resolved lazily.
type Member struct {
	UserID   ConnID  `json:"user_id"`
	Username *string `json:"username,omitempty"`
}

// TypingIndicator is ephemeral: never logged, never replayed.
type TypingIndicator struct {
	UserID   ConnID  `json:"user_id"`
	Username *string `json:"username,omitempty"`
	RoomID   RoomID  `json:"room_id"`
}
