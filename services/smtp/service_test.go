package smtp

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailadmin/config"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
)

type delivery struct {
	from string
	to   []string
	data []byte
}

type testBackend struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (b *testBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

type testSession struct {
	backend       *testBackend
	authenticated bool
	from          string
	to            []string
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username == "ann@example.com" && password == "secret" {
			s.authenticated = true
			return nil
		}
		return smtp.ErrAuthFailed
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authenticated {
		return smtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	if to == "bounce@example.com" {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "no such user"}
	}
	s.to = append(s.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.deliveries = append(s.backend.deliveries, delivery{from: s.from, to: s.to, data: data})
	return nil
}

func (s *testSession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *testSession) Logout() error {
	return nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func startServer(t *testing.T) (*testBackend, *SMTPService) {
	t.Helper()

	backend := &testBackend{}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true
	server.ReadTimeout = 5 * time.Second
	server.WriteTimeout = 5 * time.Second

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = server.Serve(l)
	}()
	t.Cleanup(func() {
		_ = server.Close()
	})

	host, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	return backend, NewSMTPService(&config.SMTPConfig{
		Host:     host,
		Port:     portNum,
		Security: config.SMTPSecurityNone,
		Timeout:  5 * time.Second,
	}, getLogger())
}

var ann = models.Identity{Email: "ann@example.com", Password: "secret"}

func TestSMTPService_Send(t *testing.T) {
	backend, service := startServer(t)

	composed, err := NewComposer().Compose(ann.Email, &models.OutgoingEmail{
		To:      []string{"bob@example.com"},
		Bcc:     []string{"hidden@example.com"},
		Subject: "Hi",
		Text:    "Hello Bob",
	}, nil)
	require.NoError(t, err)

	result, err := service.Send(context.Background(), ann, composed)
	require.NoError(t, err)
	assert.Equal(t, composed.MessageID, result.MessageID)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.deliveries, 1)
	assert.Equal(t, "ann@example.com", backend.deliveries[0].from)
	assert.ElementsMatch(t, []string{"bob@example.com", "hidden@example.com"}, backend.deliveries[0].to)
	assert.Contains(t, string(backend.deliveries[0].data), "Subject: Hi")
}

func TestSMTPService_AuthFailure(t *testing.T) {
	_, service := startServer(t)

	err := service.Verify(context.Background(), models.Identity{Email: "ann@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, mailerrors.ErrAuth), "got %v", err)
	assert.NoError(t, service.Verify(context.Background(), ann))
}

func TestSMTPService_RejectedRecipient(t *testing.T) {
	backend, service := startServer(t)

	_, err := service.Send(context.Background(), ann, &models.ComposedMessage{
		MessageID:  "<x@example.com>",
		From:       ann.Email,
		Recipients: []string{"bounce@example.com"},
		Raw:        []byte("Subject: x\r\n\r\nbody"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bounce@example.com")
	assert.Empty(t, backend.deliveries)
}

func TestSMTPService_NoRecipients(t *testing.T) {
	_, service := startServer(t)

	_, err := service.Send(context.Background(), ann, &models.ComposedMessage{From: ann.Email, Raw: []byte("x")})
	assert.ErrorIs(t, err, mailerrors.ErrInvalidRequest)
}

func TestSMTPService_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	service := NewSMTPService(&config.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Security: config.SMTPSecurityNone,
		Timeout:  time.Second,
	}, getLogger())

	err = service.Verify(context.Background(), ann)
	assert.ErrorIs(t, err, mailerrors.ErrTransportUnavailable)
}
