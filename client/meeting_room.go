package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
)

// SearchMeetingRooms lists rooms matching name and equipment (substring) and
// capacity. All filters are always sent; the backend ignores a capacity of 0.
func (c *Client) SearchMeetingRooms(ctx context.Context, name string, capacity int, equipment string, pageNo, pageSize int) (*Result[v1.MeetingRoomList], error) {
	q := url.Values{
		"name":      {name},
		"capacity":  {strconv.Itoa(capacity)},
		"equipment": {equipment},
		"pageNo":    {strconv.Itoa(pageNo)},
		"pageSize":  {strconv.Itoa(pageSize)},
	}

	return send[v1.MeetingRoomList](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathMeetingRoomList,
		query:  q,
	})
}
