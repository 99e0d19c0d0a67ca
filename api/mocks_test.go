package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/models"
)

type mockMailbox struct {
	mock.Mock
}

func (m *mockMailbox) ListFolder(ctx context.Context, identity models.Identity, folder string, limit int) (*interfaces.ListResult, error) {
	args := m.Called(ctx, identity, folder, limit)
	result, _ := args.Get(0).(*interfaces.ListResult)
	return result, args.Error(1)
}

func (m *mockMailbox) OpenMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.EmailDetail, error) {
	args := m.Called(ctx, identity, folder, uid)
	detail, _ := args.Get(0).(*models.EmailDetail)
	return detail, args.Error(1)
}

func (m *mockMailbox) DownloadAttachment(ctx context.Context, identity models.Identity, folder string, uid uint32, index int) (*models.Attachment, error) {
	args := m.Called(ctx, identity, folder, uid, index)
	attachment, _ := args.Get(0).(*models.Attachment)
	return attachment, args.Error(1)
}

func (m *mockMailbox) MoveMessage(ctx context.Context, identity models.Identity, uid uint32, source, target string) error {
	return m.Called(ctx, identity, uid, source, target).Error(0)
}

func (m *mockMailbox) DeleteMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) error {
	return m.Called(ctx, identity, folder, uid).Error(0)
}

func (m *mockMailbox) SendMessage(ctx context.Context, identity models.Identity, email *models.OutgoingEmail) (*models.SendResult, error) {
	args := m.Called(ctx, identity, email)
	result, _ := args.Get(0).(*models.SendResult)
	return result, args.Error(1)
}

func (m *mockMailbox) SaveDraft(ctx context.Context, identity models.Identity, draft *models.OutgoingEmail) error {
	return m.Called(ctx, identity, draft).Error(0)
}

func (m *mockMailbox) ClearCache(ctx context.Context, identity models.Identity) int {
	return m.Called(ctx, identity).Int(0)
}

func (m *mockMailbox) FolderStats(ctx context.Context, identity models.Identity) (map[string]models.FolderStats, error) {
	args := m.Called(ctx, identity)
	stats, _ := args.Get(0).(map[string]models.FolderStats)
	return stats, args.Error(1)
}

func (m *mockMailbox) Login(ctx context.Context, identity models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockMailbox) Logout(ctx context.Context, identity models.Identity) {
	m.Called(ctx, identity)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *mockProfiles) SaveProfile(ctx context.Context, email string, profile *models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, email, profile)
	saved, _ := args.Get(0).(*models.Profile)
	return saved, args.Error(1)
}

func (m *mockProfiles) SaveSignatureImage(ctx context.Context, email, dataURL string) (string, error) {
	args := m.Called(ctx, email, dataURL)
	return args.String(0), args.Error(1)
}

func (m *mockProfiles) GetSignatureImage(ctx context.Context, email string) ([]byte, string, error) {
	args := m.Called(ctx, email)
	image, _ := args.Get(0).([]byte)
	return image, args.String(1), args.Error(2)
}

func (m *mockProfiles) Signature(ctx context.Context, email string) (*models.Signature, error) {
	args := m.Called(ctx, email)
	signature, _ := args.Get(0).(*models.Signature)
	return signature, args.Error(1)
}

type fixedSize int

func (f fixedSize) Len() int  { return int(f) }
func (f fixedSize) Size() int { return int(f) }
