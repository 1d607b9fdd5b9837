package services

import (
	"context"

	"github.com/docdrop-io/apiserver/types"
)

// Events receives notifications about completed state changes.
// Implementations must be best-effort: they may not fail the operation
// that produced the event.
type Events interface {
	// UserSignedUp fires after a signup persists a new user. The
	// verification path carries the emailed confirmation token.
	UserSignedUp(ctx context.Context, email, verificationPath string)

	// FileUploaded fires after an upload persists a file record.
	FileUploaded(ctx context.Context, record types.FileRecord)
}

type noopEvents struct{}

func (noopEvents) UserSignedUp(context.Context, string, string) {}
func (noopEvents) FileUploaded(context.Context, types.FileRecord) {}
