package model

import (
	"errors"
	"fmt"
)

var ErrInvalidCursor = errors.New("invalid pagination cursor")

// PaginationCursor mirrors the listing index key of the last record of a page.
type PaginationCursor struct {
	JobId            string `json:"job_id"`
	UserId           string `json:"user_id"`
	RequestTimestamp uint64 `json:"request_timestamp"`
}

// CheckOwner rejects a cursor produced for a different user's listing.
func (c *PaginationCursor) CheckOwner(userId string) error {
	if c == nil {
		return nil
	}
	if c.JobId == "" {
		return fmt.Errorf("%w: empty job_id", ErrInvalidCursor)
	}
	if c.UserId != userId {
		return fmt.Errorf("%w: cursor belongs to user %q", ErrInvalidCursor, c.UserId)
	}
	return nil
}
