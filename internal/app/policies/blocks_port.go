package policies

import (
	"context"

	domainblocks "roomfront/internal/domain/blocks"
	domainrange "roomfront/internal/domain/shared/daterange"
)

type BlocksPort interface {
	SubmitBlocks(ctx context.Context, token string, sub domainblocks.Submission) error
	Unblock(ctx context.Context, token, roomID string, date domainrange.Day) error
}
