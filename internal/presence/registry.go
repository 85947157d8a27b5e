package presence

import "sync"

// Participant is one user's active membership in one room. Registry entries
// live only as long as the connection; nothing here is persisted.
type Participant struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// Registry tracks connected participants, at most one entry per user id.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Participant
	byRoom map[string]map[string]struct{} // roomID -> set of userIDs
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Participant),
		byRoom: make(map[string]map[string]struct{}),
	}
}

// Join inserts the participant, replacing any prior entry for the same user
// id. A rejoin after a reconnect lands here with the same user id and must
// not duplicate the entry; the latest room wins.
func (r *Registry) Join(p Participant) Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[p.UserID]; ok && prev.RoomID != p.RoomID {
		r.dropFromRoom(prev.RoomID, p.UserID)
	}
	r.byUser[p.UserID] = p
	if _, ok := r.byRoom[p.RoomID]; !ok {
		r.byRoom[p.RoomID] = make(map[string]struct{})
	}
	r.byRoom[p.RoomID][p.UserID] = struct{}{}
	return p
}

// MembersOf returns a snapshot of the room's participants, in no particular
// order.
func (r *Registry) MembersOf(roomID string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byRoom[roomID]
	if !ok {
		return nil
	}
	out := make([]Participant, 0, len(ids))
	for id := range ids {
		if p, ok := r.byUser[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether userID is currently a member of roomID.
func (r *Registry) Contains(roomID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUser[userID]
	return ok && p.RoomID == roomID
}

// Leave removes the user's entry. Absent users are a no-op: a disconnect can
// race with an explicit leave.
func (r *Registry) Leave(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(r.byUser, userID)
	r.dropFromRoom(p.RoomID, userID)
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

func (r *Registry) dropFromRoom(roomID, userID string) {
	if set, ok := r.byRoom[roomID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(r.byRoom, roomID)
		}
	}
}
