package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/config"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

const logoutTimeout = 5 * time.Second

type dialFunc func(ctx context.Context, identity models.Identity) (*client.Client, error)

// connection is the pooled session of one identity. mu is held for the
// whole duration of a request so requests for the same identity serialize.
type connection struct {
	mu       sync.Mutex
	client   *client.Client
	password string
	lastUsed time.Time
	closed   bool
}

type IMAPService struct {
	cfg         *config.IMAPConfig
	idleTimeout time.Duration
	log         logger.Logger
	dial        dialFunc
	now         func() time.Time

	mu    sync.Mutex
	conns map[string]*connection
}

func NewIMAPService(cfg *config.IMAPConfig, idleTimeout time.Duration, log logger.Logger) *IMAPService {
	s := &IMAPService{
		cfg:         cfg,
		idleTimeout: idleTimeout,
		log:         log,
		now:         time.Now,
		conns:       make(map[string]*connection),
	}
	s.dial = s.connectMailbox
	return s
}

// connectMailbox dials the server and logs the identity in.
func (s *IMAPService) connectMailbox(ctx context.Context, identity models.Identity) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.connectMailbox")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	span.SetTag("server", s.cfg.Host)
	span.SetTag("port", s.cfg.Port)
	span.SetTag("tls", s.cfg.Secure)

	serverAddr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{
		Timeout:   s.cfg.ConnTimeout,
		KeepAlive: 30 * time.Second,
	}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	var c *client.Client
	var err error
	if s.cfg.Secure {
		tlsConfig := &tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.InsecureSkipVerify,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(mailerrors.Classify(err), "connect to %s", serverAddr)
	}

	c.Timeout = s.cfg.AuthTimeout
	if err = c.Login(identity.Email, identity.Password); err != nil {
		_ = c.Logout()
		tracing.TraceErr(span, err)
		return nil, classifyLoginError(err)
	}
	c.Timeout = 0

	s.log.Debug("imap session opened", zap.String("user", identity.Key()), zap.String("server", serverAddr))
	return c, nil
}

// classifyLoginError treats any protocol level rejection of LOGIN as an
// authentication failure.
func classifyLoginError(err error) error {
	classified := mailerrors.Classify(err)
	if mailerrors.IsTaxonomy(classified) {
		return classified
	}
	return errors.Wrap(mailerrors.ErrAuth, err.Error())
}

func (s *IMAPService) connectionFor(key string) *connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[key]
	if !ok {
		conn = &connection{}
		s.conns[key] = conn
	}
	return conn
}

// acquire returns the locked connection of the identity. The caller must
// unlock conn.mu.
func (s *IMAPService) acquire(identity models.Identity) *connection {
	for {
		conn := s.connectionFor(identity.Key())
		conn.mu.Lock()
		if !conn.closed {
			return conn
		}
		conn.mu.Unlock()
	}
}

// getClient returns a healthy session, reusing the pooled one when it
// answers NOOP and was opened with the same password.
func (s *IMAPService) getClient(ctx context.Context, conn *connection, identity models.Identity) (*client.Client, error) {
	if conn.client != nil {
		if conn.password == identity.Password && s.now().Sub(conn.lastUsed) < s.idleTimeout {
			conn.client.Timeout = s.cfg.ConnTimeout
			err := conn.client.Noop()
			if err == nil {
				return conn.client, nil
			}
			s.log.Debug("pooled imap session is broken", zap.String("user", identity.Key()), zap.Error(err))
		}
		s.disconnectClient(identity.Key(), conn.client)
		conn.client = nil
	}

	c, err := s.dial(ctx, identity)
	if err != nil {
		return nil, err
	}
	conn.client = c
	conn.password = identity.Password
	conn.lastUsed = s.now()
	return c, nil
}

// withClient runs fn on the identity's session while holding its lock.
func (s *IMAPService) withClient(ctx context.Context, identity models.Identity, fn func(c *client.Client) error) error {
	if err := ctx.Err(); err != nil {
		return mailerrors.Classify(err)
	}

	conn := s.acquire(identity)
	defer conn.mu.Unlock()

	c, err := s.getClient(ctx, conn, identity)
	if err != nil {
		return err
	}

	c.Timeout = s.commandTimeout(ctx)
	err = fn(c)
	c.Timeout = 0
	conn.lastUsed = s.now()

	if err != nil && isConnectionError(err) {
		s.disconnectClient(identity.Key(), conn.client)
		conn.client = nil
	}
	return mailerrors.Classify(err)
}

func (s *IMAPService) commandTimeout(ctx context.Context) time.Duration {
	timeout := s.cfg.CommandTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && (timeout <= 0 || remaining < timeout) {
			timeout = remaining
		}
	}
	return timeout
}

// disconnectClient logs a session out, giving up after logoutTimeout.
func (s *IMAPService) disconnectClient(key string, c *client.Client) {
	if c == nil {
		return
	}

	c.Timeout = logoutTimeout
	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
	}()

	select {
	case err := <-done:
		if err != nil && err != client.ErrAlreadyLoggedOut {
			s.log.Debug("imap logout failed", zap.String("user", key), zap.Error(err))
		}
	case <-time.After(logoutTimeout):
		s.log.Warn("imap logout timed out", zap.String("user", key))
		_ = c.Terminate()
	}
}

// Close logs the identity's session out and forgets it.
func (s *IMAPService) Close(identity models.Identity) {
	key := identity.Key()
	s.mu.Lock()
	conn, ok := s.conns[key]
	delete(s.conns, key)
	s.mu.Unlock()
	if !ok {
		return
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	conn.closed = true
	s.disconnectClient(key, conn.client)
	conn.client = nil
}

// CloseIdle logs out sessions unused for longer than the idle timeout.
// Sessions with a request in flight are skipped.
func (s *IMAPService) CloseIdle() int {
	s.mu.Lock()
	candidates := make(map[string]*connection, len(s.conns))
	for key, conn := range s.conns {
		candidates[key] = conn
	}
	s.mu.Unlock()

	closed := 0
	for key, conn := range candidates {
		if !conn.mu.TryLock() {
			continue
		}
		if conn.closed || s.now().Sub(conn.lastUsed) < s.idleTimeout {
			conn.mu.Unlock()
			continue
		}

		conn.closed = true
		s.mu.Lock()
		if s.conns[key] == conn {
			delete(s.conns, key)
		}
		s.mu.Unlock()

		if conn.client != nil {
			s.disconnectClient(key, conn.client)
			conn.client = nil
			closed++
		}
		conn.mu.Unlock()
	}

	if closed > 0 {
		s.log.Info("closed idle imap sessions", zap.Int("count", closed))
	}
	return closed
}

// Size is the number of identities with a pooled session.
func (s *IMAPService) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown logs out every pooled session.
func (s *IMAPService) Shutdown() {
	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[string]*connection)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for key, conn := range conns {
		wg.Add(1)
		go func(key string, conn *connection) {
			defer wg.Done()
			conn.mu.Lock()
			defer conn.mu.Unlock()
			conn.closed = true
			s.disconnectClient(key, conn.client)
			conn.client = nil
		}(key, conn)
	}
	wg.Wait()
	s.log.Info("imap pool stopped", zap.Int("sessions", len(conns)))
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	classified := mailerrors.Classify(err)
	if errors.Is(classified, mailerrors.ErrTransportUnavailable) || errors.Is(classified, mailerrors.ErrTimeout) {
		return true
	}

	errorMsg := err.Error()
	return strings.Contains(errorMsg, "connection closed") ||
		strings.Contains(errorMsg, "i/o timeout") ||
		strings.Contains(errorMsg, "EOF") ||
		strings.Contains(errorMsg, "connection reset")
}
