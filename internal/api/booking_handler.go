package api

import (
	"context"
	"net/http"
	"time"

	"roombook/internal/dto/req"
	"roombook/internal/dto/resp"
	"roombook/internal/repository"
	"roombook/internal/service"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"

	"github.com/gin-gonic/gin"
)

type MeetingRoomProvider interface {
	Search(ctx context.Context, filter repository.RoomFilter, pageNo, pageSize int) (*v1.MeetingRoomList, error)
}

type BookingProvider interface {
	List(ctx context.Context, filter repository.BookingFilter, pageNo, pageSize int) (*v1.BookingList, error)
	Add(ctx context.Context, userID uint64, req v1.AddBooking) error
	Unbind(ctx context.Context, op *service.OperatorInfo, id uint64) error
}

type BookingHandler struct {
	rooms    MeetingRoomProvider
	bookings BookingProvider
}

func NewBookingHandler(rooms MeetingRoomProvider, bookings BookingProvider) *BookingHandler {
	return &BookingHandler{rooms: rooms, bookings: bookings}
}

func (h *BookingHandler) MeetingRoomList(c *gin.Context) {
	var q req.MeetingRoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	list, err := h.rooms.Search(c.Request.Context(), repository.RoomFilter{
		Name:      q.Name,
		Capacity:  q.Capacity,
		Equipment: q.Equipment,
	}, q.PageNo, q.PageSize)
	if err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, list)
}

func (h *BookingHandler) List(c *gin.Context) {
	var q req.BookingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := repository.BookingFilter{
		Username:     q.Username,
		RoomName:     q.MeetingRoomName,
		RoomLocation: q.MeetingRoomPosition,
	}
	if q.RangeStart > 0 {
		filter.Start = time.UnixMilli(q.RangeStart)
	}
	if q.RangeEnd > 0 {
		filter.End = time.UnixMilli(q.RangeEnd)
	}

	list, err := h.bookings.List(c.Request.Context(), filter, q.PageNo, q.PageSize)
	if err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, list)
}

func (h *BookingHandler) Add(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var body v1.AddBooking
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.bookings.Add(c.Request.Context(), op.UserID, body); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, constraints.MessageSuccess)
}

func (h *BookingHandler) Unbind(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var uri req.BookingURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.bookings.Unbind(c.Request.Context(), op, uri.ID); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, constraints.MessageSuccess)
}
