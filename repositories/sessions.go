package repositories

import (
	"chat-hub/domain"
	"sync"

	"github.com/samber/lo"
)

// SessionDirectory maps a connection to its display name.
type SessionDirectory struct {
	names sync.Map // domain.ConnID -> string
}

func NewSessionDirectory() *SessionDirectory {
	return &SessionDirectory{}
}

func (s *SessionDirectory) SetName(conn domain.ConnID, name string) {
	s.names.Store(conn, name)
}

// Name returns nil when the connection never set a display name.
func (s *SessionDirectory) Name(conn domain.ConnID) *string {
	value, ok := s.names.Load(conn)
	if !ok {
		return nil
	}
	return lo.ToPtr(value.(string))
}

func (s *SessionDirectory) Remove(conn domain.ConnID) {
	s.names.Delete(conn)
}

// Members resolves display names for a member snapshot.
func (s *SessionDirectory) Members(conns []domain.ConnID) []domain.Member {
	return lo.Map(conns, func(conn domain.ConnID, _ int) domain.Member {
		return domain.Member{UserID: conn, Username: s.Name(conn)}
	})
}
