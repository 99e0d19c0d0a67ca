package interfaces

import (
	"context"

	"github.com/customeros/mailadmin/internal/models"
)

type ProfileService interface {
	GetProfile(ctx context.Context, email string) (*models.Profile, error)
	SaveProfile(ctx context.Context, email string, profile *models.Profile) (*models.Profile, error)
	SaveSignatureImage(ctx context.Context, email, dataURL string) (string, error)
	GetSignatureImage(ctx context.Context, email string) ([]byte, string, error)
	SignatureProvider
}

// SignatureProvider returns the signature to append to outgoing mail, or nil
// when the user has none or disabled it.
type SignatureProvider interface {
	Signature(ctx context.Context, email string) (*models.Signature, error)
}
