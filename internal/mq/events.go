package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/docdrop-io/apiserver/types"
)

// Event channels consumed by downstream workers. The signup channel
// feeds the email-delivery worker; the upload channel feeds audit and
// notification consumers.
const (
	ChannelUserSignup   = "user.signup"
	ChannelFileUploaded = "file.uploaded"
)

// SignupEvent is published after a new account is created.
type SignupEvent struct {
	Email            string `json:"email"`
	VerificationPath string `json:"verification_path"`
}

// FileUploadedEvent is published after a document is stored.
type FileUploadedEvent struct {
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	Uploader   string    `json:"uploader"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Publisher emits domain events through a broker. Publishing is
// best-effort: failures are logged and never fail the request that
// produced the event.
type Publisher struct {
	mq *MQ
}

var _ services.Events = (*Publisher)(nil)

// NewPublisher constructs a Publisher over the given MQ.
func NewPublisher(m *MQ) *Publisher {
	return &Publisher{mq: m}
}

// UserSignedUp publishes a SignupEvent.
func (p *Publisher) UserSignedUp(ctx context.Context, email, verificationPath string) {
	p.publish(ctx, ChannelUserSignup, SignupEvent{
		Email:            email,
		VerificationPath: verificationPath,
	})
}

// FileUploaded publishes a FileUploadedEvent.
func (p *Publisher) FileUploaded(ctx context.Context, record types.FileRecord) {
	p.publish(ctx, ChannelFileUploaded, FileUploadedEvent{
		FileID:     record.ID,
		Filename:   record.Filename,
		Uploader:   record.Uploader,
		UploadedAt: record.CreatedAt,
	})
}

func (p *Publisher) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("mq: marshal %s event: %v", channel, err)
		return
	}
	if _, err := p.mq.Publish(ctx, channel, data, nil); err != nil {
		log.Printf("mq: publish %s event: %v", channel, err)
	}
}
