package backendapi

import (
	"context"
	"fmt"
	"net/http"

	"roomfront/internal/app/policies"
	domainblocks "roomfront/internal/domain/blocks"
	"roomfront/internal/domain/shared/daterange"
)

// SubmitBlocks sends the whole batch in one call.
func (c *Client) SubmitBlocks(ctx context.Context, token string, sub domainblocks.Submission) error {
	var resp successResponse
	path := "/rooms/" + sub.RoomID + "/blocks/bulk"
	if err := c.do(ctx, http.MethodPost, path, token, nil, bulkBlockRequest{Schedules: toSchedules(sub)}, &resp); err != nil {
		return err
	}
	return resp.check()
}

func (c *Client) Unblock(ctx context.Context, token, roomID string, date daterange.Day) error {
	var resp successResponse
	path := "/rooms/" + roomID + "/blocks/unblock"
	if err := c.do(ctx, http.MethodPost, path, token, nil, unblockRequest{Date: date.Key()}, &resp); err != nil {
		return err
	}
	return resp.check()
}

func (r successResponse) check() error {
	if r.Success != nil && !*r.Success {
		if r.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, r.Message)
		}
		return ErrRejected
	}
	return nil
}

var _ policies.BlocksPort = (*Client)(nil)
