package service

import (
	"context"

	"roombook/internal/model"
	"roombook/internal/repository"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/logger"

	"go.uber.org/zap"
)

const (
	maxPageSize = 100
	// maxPageNo keeps (pageNo-1)*pageSize far from int overflow.
	maxPageNo = 1_000_000
)

type MeetingRoomService struct {
	rooms repository.MeetingRoomInterface
}

func NewMeetingRoomService(rooms repository.MeetingRoomInterface) *MeetingRoomService {
	return &MeetingRoomService{rooms: rooms}
}

func (s *MeetingRoomService) Search(ctx context.Context, filter repository.RoomFilter, pageNo, pageSize int) (*v1.MeetingRoomList, error) {
	offset, limit := page(pageNo, pageSize)
	rooms, total, err := s.rooms.Search(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	list := &v1.MeetingRoomList{MeetingRooms: make([]v1.MeetingRoom, 0, len(rooms)), TotalCount: total}
	for i := range rooms {
		list.MeetingRooms = append(list.MeetingRooms, toMeetingRoom(&rooms[i]))
	}
	return list, nil
}

// SeedDefaults inserts the development room set. Existing rooms are left alone.
func (s *MeetingRoomService) SeedDefaults(ctx context.Context) error {
	rooms := []model.MeetingRoom{
		{Name: "Mercury", Capacity: 10, Location: "1F", Equipment: "whiteboard", Description: "small room by the entrance"},
		{Name: "Venus", Capacity: 5, Location: "2F", Equipment: "", Description: "phone booth"},
		{Name: "Earth", Capacity: 30, Location: "3F", Equipment: "projector, whiteboard", Description: "all-hands room"},
		{Name: "Mars", Capacity: 10, Location: "3F", Equipment: "tv", Description: ""},
	}
	if err := s.rooms.Seed(ctx, rooms); err != nil {
		return err
	}
	logger.Info("meeting rooms seeded", zap.Int("count", len(rooms)))
	return nil
}

// page converts 1-based paging to offset and limit.
func page(pageNo, pageSize int) (int, int) {
	if pageNo < 1 {
		pageNo = 1
	}
	if pageNo > maxPageNo {
		pageNo = maxPageNo
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (pageNo - 1) * pageSize, pageSize
}

func toMeetingRoom(r *model.MeetingRoom) v1.MeetingRoom {
	return v1.MeetingRoom{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Equipment:   r.Equipment,
		Description: r.Description,
		IsBooked:    r.IsBooked,
		CreateTime:  r.CreatedAt,
		UpdateTime:  r.UpdatedAt,
	}
}
