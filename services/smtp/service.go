package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/config"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

// SMTPService submits composed messages with the identity's credentials.
// Every send opens its own session.
type SMTPService struct {
	cfg *config.SMTPConfig
	log logger.Logger
}

func NewSMTPService(cfg *config.SMTPConfig, log logger.Logger) *SMTPService {
	return &SMTPService{cfg: cfg, log: log}
}

func (s *SMTPService) Send(ctx context.Context, identity models.Identity, message *models.ComposedMessage) (*models.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.Send")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	span.SetTag("message.id", message.MessageID)
	span.SetTag("recipients", len(message.Recipients))

	if len(message.Recipients) == 0 {
		err := errors.Wrap(mailerrors.ErrInvalidRequest, "at least one recipient is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	c, err := s.openSession(ctx, identity)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer c.Close()

	if err = c.Mail(message.From, nil); err != nil {
		err = errors.Wrap(classifySMTPError(err), "SMTP MAIL command failed")
		tracing.TraceErr(span, err)
		return nil, err
	}
	for _, recipient := range message.Recipients {
		if err = c.Rcpt(recipient, nil); err != nil {
			err = errors.Wrapf(classifySMTPError(err), "SMTP RCPT command failed for %s", recipient)
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	dataWriter, err := c.Data()
	if err != nil {
		err = errors.Wrap(classifySMTPError(err), "SMTP DATA command failed")
		tracing.TraceErr(span, err)
		return nil, err
	}
	if _, err = dataWriter.Write(message.Raw); err != nil {
		_ = dataWriter.Close()
		err = errors.Wrap(classifySMTPError(err), "failed to write email data")
		tracing.TraceErr(span, err)
		return nil, err
	}
	resp, err := dataWriter.CloseWithResponse()
	if err != nil {
		err = errors.Wrap(classifySMTPError(err), "failed to close data writer")
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err = c.Quit(); err != nil {
		s.log.Debug("smtp quit failed", zap.String("user", identity.Key()), zap.Error(err))
	}

	result := &models.SendResult{MessageID: message.MessageID}
	if resp != nil {
		result.Response = resp.StatusText
	}
	return result, nil
}

// Verify opens and authenticates a session without sending.
func (s *SMTPService) Verify(ctx context.Context, identity models.Identity) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.Verify")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)

	c, err := s.openSession(ctx, identity)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer c.Close()
	_ = c.Quit()
	return nil
}

func (s *SMTPService) openSession(ctx context.Context, identity models.Identity) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}

	var c *smtp.Client
	switch s.cfg.Security {
	case config.SMTPSecurityTLS:
		conn, err := (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(mailerrors.Classify(err), "connect to %s", addr)
		}
		c = smtp.NewClient(conn)
	case config.SMTPSecurityNone:
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(mailerrors.Classify(err), "connect to %s", addr)
		}
		c = smtp.NewClient(conn)
	default:
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(mailerrors.Classify(err), "connect to %s", addr)
		}
		c, err = smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(mailerrors.Classify(err), "failed to start TLS")
		}
	}
	c.CommandTimeout = s.cfg.Timeout
	c.SubmissionTimeout = 2 * s.cfg.Timeout

	if err := c.Auth(sasl.NewPlainClient("", identity.Email, identity.Password)); err != nil {
		_ = c.Close()
		return nil, errors.Wrap(classifySMTPError(err), "SMTP authentication failed")
	}
	return c, nil
}

// classifySMTPError maps SMTP reply codes onto the error taxonomy.
func classifySMTPError(err error) error {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		switch smtpErr.Code {
		case 530, 534, 535:
			return errors.Wrap(mailerrors.ErrAuth, smtpErr.Error())
		case 421:
			return errors.Wrap(mailerrors.ErrTransportUnavailable, smtpErr.Error())
		}
		return err
	}
	return mailerrors.Classify(err)
}
