package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"roombook/internal/model"
	"roombook/pkg/constraints"
)

// MemoryStore backs every repository interface with process memory. It is
// used when the server runs without MySQL and redis.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uint64]model.User
	rooms    map[uint64]model.MeetingRoom
	bookings map[uint64]model.Booking
	keys     map[string]expiring
	nextID   uint64
}

type expiring struct {
	value   string
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint64]model.User),
		rooms:    make(map[uint64]model.MeetingRoom),
		bookings: make(map[uint64]model.Booking),
		keys:     make(map[string]expiring),
	}
}

func (m *MemoryStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) Users() UserInterface               { return memoryUsers{m} }
func (m *MemoryStore) MeetingRooms() MeetingRoomInterface { return memoryRooms{m} }
func (m *MemoryStore) Bookings() BookingInterface         { return memoryBookings{m} }
func (m *MemoryStore) Sessions() SessionInterface         { return memorySessions{m} }
func (m *MemoryStore) Captchas() CaptchaInterface         { return memoryCaptchas{m} }

func (m *MemoryStore) setKey(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := expiring{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.keys[key] = e
}

func (m *MemoryStore) getKey(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.keys[key]
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) delKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username {
			return ErrConflict
		}
	}
	user.ID = r.m.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uint64) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) Save(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.m.users[user.ID] = *user
	return nil
}

type memoryRooms struct{ m *MemoryStore }

func (r memoryRooms) Search(_ context.Context, filter RoomFilter, offset, limit int) ([]model.MeetingRoom, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var matched []model.MeetingRoom
	for _, room := range r.m.rooms {
		if filter.Name != "" && !strings.Contains(room.Name, filter.Name) {
			continue
		}
		if filter.Capacity > 0 && room.Capacity != filter.Capacity {
			continue
		}
		if filter.Equipment != "" && !strings.Contains(room.Equipment, filter.Equipment) {
			continue
		}
		matched = append(matched, room)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (r memoryRooms) FindByID(_ context.Context, id uint64) (*model.MeetingRoom, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (r memoryRooms) Seed(_ context.Context, rooms []model.MeetingRoom) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	taken := make(map[string]bool, len(r.m.rooms))
	for _, room := range r.m.rooms {
		taken[room.Name] = true
	}
	for _, room := range rooms {
		if taken[room.Name] {
			continue
		}
		room.ID = r.m.id()
		room.CreatedAt = time.Now()
		room.UpdatedAt = room.CreatedAt
		r.m.rooms[room.ID] = room
		taken[room.Name] = true
	}
	return nil
}

type memoryBookings struct{ m *MemoryStore }

func (r memoryBookings) Search(_ context.Context, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var matched []model.Booking
	for _, b := range r.m.bookings {
		b.User = r.m.users[b.UserID]
		b.Room = r.m.rooms[b.RoomID]
		if filter.Username != "" && !strings.Contains(b.User.Username, filter.Username) {
			continue
		}
		if filter.RoomName != "" && !strings.Contains(b.Room.Name, filter.RoomName) {
			continue
		}
		if filter.RoomLocation != "" && !strings.Contains(b.Room.Location, filter.RoomLocation) {
			continue
		}
		if !filter.Start.IsZero() && b.StartTime.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && b.StartTime.After(filter.End) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.After(matched[j].StartTime) })
	return window(matched, offset, limit), int64(len(matched)), nil
}

func (r memoryBookings) FindByID(_ context.Context, id uint64) (*model.Booking, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r memoryBookings) Create(_ context.Context, booking *model.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, b := range r.m.bookings {
		if b.RoomID == booking.RoomID && b.Status != constraints.BookingReleased &&
			b.StartTime.Before(booking.EndTime) && b.EndTime.After(booking.StartTime) {
			return ErrConflict
		}
	}
	booking.ID = r.m.id()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.m.bookings[booking.ID] = *booking
	return nil
}

func (r memoryBookings) UpdateStatus(_ context.Context, id uint64, status string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	r.m.bookings[id] = b
	return nil
}

type memorySessions struct{ m *MemoryStore }

func (r memorySessions) Save(_ context.Context, userID uint64, refreshToken string, ttl time.Duration) error {
	r.m.setKey(sessionKey(userID), refreshToken, ttl)
	return nil
}

func (r memorySessions) Get(_ context.Context, userID uint64) (string, error) {
	return r.m.getKey(sessionKey(userID))
}

type memoryCaptchas struct{ m *MemoryStore }

func (r memoryCaptchas) Save(_ context.Context, purpose, address, code string, ttl time.Duration) error {
	r.m.setKey(captchaKey(purpose, address), code, ttl)
	return nil
}

func (r memoryCaptchas) Get(_ context.Context, purpose, address string) (string, error) {
	return r.m.getKey(captchaKey(purpose, address))
}

func (r memoryCaptchas) Delete(_ context.Context, purpose, address string) error {
	r.m.delKey(captchaKey(purpose, address))
	return nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
