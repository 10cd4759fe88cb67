package repositories

import (
	"chat-hub/domain"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestSessionDirectory(t *testing.T) {
	req := require.New(t)
	sessions := NewSessionDirectory()

	// Given one named and one anonymous connection
	sessions.SetName("c1", "alice")

	// Then names resolve, absent ones as nil
	req.Equal("alice", *sessions.Name("c1"))
	req.Nil(sessions.Name("c2"))
	req.Equal([]domain.Member{
		{UserID: "c1", Username: lo.ToPtr("alice")},
		{UserID: "c2"},
	}, sessions.Members([]domain.ConnID{"c1", "c2"}))

	// When renaming then removing
	sessions.SetName("c1", "alicia")
	req.Equal("alicia", *sessions.Name("c1"))
	sessions.Remove("c1")
	req.Nil(sessions.Name("c1"))
}
