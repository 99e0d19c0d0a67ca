package mail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/customeros/mailadmin/dto"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
)

type fakeMessage struct {
	uid     uint32
	subject string
	date    time.Time
	flags   []string
	header  string
	body    string
}

func (m *fakeMessage) raw() []byte {
	return []byte(m.header + "\r\n" + m.body)
}

// fakeTransport is an in-memory mailbox server.
type fakeTransport struct {
	mu      sync.Mutex
	folders map[string][]*fakeMessage
	nextUID uint32
	calls   map[string]int

	failures map[string]error
	// password, when set, is the only credential the server accepts.
	password string
	// onFetch runs inside FetchSummaries before the folder is read.
	onFetch func(ctx context.Context) error
}

func newFakeTransport(folders ...string) *fakeTransport {
	t := &fakeTransport{
		folders:  make(map[string][]*fakeMessage),
		nextUID:  1,
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
	for _, f := range folders {
		t.folders[f] = nil
	}
	return t
}

func (t *fakeTransport) add(folder, subject string, date time.Time) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	uid := t.nextUID
	t.nextUID++
	header := fmt.Sprintf("From: sender@example.com\r\nTo: ann@example.com\r\nSubject: %s\r\nDate: %s\r\n",
		subject, date.Format(time.RFC1123Z))
	t.folders[folder] = append(t.folders[folder], &fakeMessage{
		uid:     uid,
		subject: subject,
		date:    date,
		header:  header,
		body:    "body of " + subject,
	})
	return uid
}

func (t *fakeTransport) addRaw(folder, header, body string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	uid := t.nextUID
	t.nextUID++
	t.folders[folder] = append(t.folders[folder], &fakeMessage{uid: uid, header: header, body: body})
	return uid
}

func (t *fakeTransport) fail(op string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[op] = err
}

func (t *fakeTransport) count(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

func (t *fakeTransport) enter(op string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[op]++
	return t.failures[op]
}

func (t *fakeTransport) find(folder string, uid uint32) (int, *fakeMessage) {
	for i, m := range t.folders[folder] {
		if m.uid == uid {
			return i, m
		}
	}
	return -1, nil
}

func (t *fakeTransport) authorize(identity models.Identity) error {
	if t.password != "" && identity.Password != t.password {
		return errors.Wrap(mailerrors.ErrAuth, identity.Key())
	}
	return nil
}

func (t *fakeTransport) FetchSummaries(ctx context.Context, identity models.Identity, folder string, max int) (*models.FolderFetch, error) {
	if err := t.enter("FetchSummaries"); err != nil {
		return nil, err
	}
	if err := t.authorize(identity); err != nil {
		return nil, err
	}
	if t.onFetch != nil {
		if err := t.onFetch(ctx); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	messages, ok := t.folders[folder]
	if !ok {
		return nil, errors.Wrap(mailerrors.ErrNotFound, folder)
	}
	start := 0
	if len(messages) > max {
		start = len(messages) - max
	}
	result := &models.FolderFetch{Messages: []*models.RawSummary{}, Total: len(messages)}
	for _, m := range messages[start:] {
		result.Messages = append(result.Messages, &models.RawSummary{
			UID:          m.uid,
			Flags:        append([]string{}, m.flags...),
			Size:         uint32(len(m.raw())),
			InternalDate: m.date,
			Header:       []byte(m.header + "\r\n"),
		})
	}
	return result, nil
}

func (t *fakeTransport) FetchMessage(_ context.Context, identity models.Identity, folder string, uid uint32) (*models.RawMessage, error) {
	if err := t.enter("FetchMessage"); err != nil {
		return nil, err
	}
	if err := t.authorize(identity); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, m := t.find(folder, uid)
	if m == nil {
		return nil, errors.Wrapf(mailerrors.ErrNotFound, "uid %d", uid)
	}
	if !hasString(m.flags, `\Seen`) {
		m.flags = append(m.flags, `\Seen`)
	}
	return &models.RawMessage{
		UID:          m.uid,
		Flags:        append([]string{}, m.flags...),
		InternalDate: m.date,
		Body:         m.raw(),
	}, nil
}

func (t *fakeTransport) MoveMessage(_ context.Context, _ models.Identity, uid uint32, source, target string) error {
	if err := t.enter("MoveMessage"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i, m := t.find(source, uid)
	if m == nil {
		return errors.Wrapf(mailerrors.ErrNotFound, "uid %d", uid)
	}
	t.folders[source] = append(t.folders[source][:i:i], t.folders[source][i+1:]...)
	moved := *m
	moved.uid = t.nextUID
	t.nextUID++
	t.folders[target] = append(t.folders[target], &moved)
	return nil
}

func (t *fakeTransport) ExpungeMessage(_ context.Context, _ models.Identity, folder string, uid uint32) error {
	if err := t.enter("ExpungeMessage"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, m := t.find(folder, uid); m != nil {
		t.folders[folder] = append(t.folders[folder][:i:i], t.folders[folder][i+1:]...)
	}
	return nil
}

func (t *fakeTransport) AppendMessage(_ context.Context, _ models.Identity, folder string, flags []string, raw []byte) error {
	if err := t.enter("AppendMessage:" + folder); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	parts := strings.SplitN(string(raw), "\r\n\r\n", 2)
	m := &fakeMessage{uid: t.nextUID, flags: flags, header: parts[0] + "\r\n", date: time.Now()}
	if len(parts) == 2 {
		m.body = parts[1]
	}
	t.nextUID++
	t.folders[folder] = append(t.folders[folder], m)
	return nil
}

func (t *fakeTransport) FolderStatus(_ context.Context, _ models.Identity, folder string) (*models.FolderStatus, error) {
	if err := t.enter("FolderStatus:" + folder); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	messages, ok := t.folders[folder]
	if !ok {
		return nil, errors.Wrap(mailerrors.ErrNotFound, folder)
	}
	status := &models.FolderStatus{Name: folder, Messages: uint32(len(messages))}
	for _, m := range messages {
		if !hasString(m.flags, `\Seen`) {
			status.Unseen++
		}
	}
	return status, nil
}

func (t *fakeTransport) Verify(_ context.Context, _ models.Identity) error {
	return t.enter("Verify")
}

func (t *fakeTransport) Close(_ models.Identity) {
	_ = t.enter("Close")
}

func (t *fakeTransport) subjects(folder string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var result []string
	for _, m := range t.folders[folder] {
		result = append(result, m.subject)
	}
	return result
}

func hasString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, identity models.Identity, message *models.ComposedMessage) (*models.SendResult, error) {
	args := m.Called(ctx, identity, message)
	if result, ok := args.Get(0).(*models.SendResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSender) Verify(ctx context.Context, identity models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMailEvent(ctx context.Context, event dto.MailEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

type stubSignatures struct {
	signature *models.Signature
	err       error
}

func (s *stubSignatures) Signature(_ context.Context, _ string) (*models.Signature, error) {
	return s.signature, s.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
