package repositories

// Store bundles the three concurrent stores.
// It is built once at process start and shared by reference with every request;
// tests build a fresh one per case.
type Store struct {
	Rooms    *RoomRegistry
	Sessions *SessionDirectory
	Stars    *StarIndex
}

func NewStore() *Store {
	return &Store{
		Rooms:    NewRoomRegistry(),
		Sessions: NewSessionDirectory(),
		Stars:    NewStarIndex(),
	}
}
