package email

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Provider interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
	SendWithAttachment(ctx context.Context, to []string, subject, htmlBody string, attachment *Attachment) error
}

// NoOpProvider is wired when no SMTP host is configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendWithAttachment(ctx context.Context, to []string, subject, htmlBody string, attachment *Attachment) error {
	return nil
}
