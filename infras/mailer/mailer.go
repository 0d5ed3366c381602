package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"resort/config"
	"resort/infras/metrics"
	"resort/infras/otel"
	"resort/shared/constant"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

var ErrNoRecipient = errors.New("mail has no recipient")

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Mail struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, message Mail) (err error)
}

type mailerImpl struct {
	config *config.Config
	otel   otel.Otel
}

// New returns an SMTP mailer. With SMTP disabled mails are only logged.
func New(config *config.Config, otel otel.Otel) Mailer {
	if !config.External.SMTP.Enable {
		log.Info().Msg("SMTP disabled, mails will be logged only")
	}

	return &mailerImpl{config: config, otel: otel}
}

func (m *mailerImpl) Send(ctx context.Context, message Mail) (err error) {
	ctx, scope := m.otel.NewScope(ctx, constant.OtelMailScopeName, constant.OtelMailScopeName+".Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() {
		metrics.IncEmailSent(err == nil)
	}()

	if len(message.To) == 0 {
		return ErrNoRecipient
	}

	scope.SetAttribute("subject", message.Subject)

	if !m.config.External.SMTP.Enable {
		log.Info().Strs("to", message.To).Str("subject", message.Subject).Msg("SMTP disabled, skipping mail")

		return nil
	}

	msg, err := m.buildMessage(message)
	if err != nil {
		return err
	}

	smtp := m.config.External.SMTP

	client, err := mail.NewClient(smtp.Host,
		mail.WithPort(smtp.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(smtp.Username),
		mail.WithPassword(smtp.Password),
	)
	if err != nil {
		log.Error().Err(err).Msg("Could not initialize smtp client")

		return fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		log.Error().Err(err).Strs("to", message.To).Msg("Failed to send mail")

		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

func (m *mailerImpl) buildMessage(message Mail) (*mail.Msg, error) {
	msg := mail.NewMsg()

	err := msg.FromFormat(m.config.External.SMTP.FromName, m.config.External.SMTP.From)
	if err != nil {
		return nil, fmt.Errorf("failed to set from address: %w", err)
	}

	err = msg.To(message.To...)
	if err != nil {
		return nil, fmt.Errorf("failed to set to address: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Body)

	for _, attachment := range message.Attachments {
		err = msg.AttachReader(attachment.Name, bytes.NewReader(attachment.Data),
			mail.WithFileContentType(mail.ContentType(attachment.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", attachment.Name, err)
		}
	}

	return msg, nil
}
