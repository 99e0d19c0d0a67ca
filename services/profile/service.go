// Package profile stores user profiles as JSON files and renders the email
// signature built from them.
package profile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/interfaces"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/internal/utils"
)

var (
	dataURLPattern = regexp.MustCompile(`^data:([A-Za-z+/.-]+);base64,(.+)$`)
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

type ProfileService struct {
	cfg     *config.ProfileConfig
	log     logger.Logger
	storage interfaces.StorageService
	now     func() time.Time

	mu sync.Mutex
}

func NewProfileService(cfg *config.ProfileConfig, log logger.Logger, storage interfaces.StorageService) (*ProfileService, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create profile directory %s", cfg.DataDir)
	}
	return &ProfileService{
		cfg:     cfg,
		log:     log,
		storage: storage,
		now:     time.Now,
	}, nil
}

var _ interfaces.ProfileService = (*ProfileService)(nil)

func fileKey(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", errors.Wrap(mailerrors.ErrInvalidRequest, "email is required")
	}
	return unsafeChars.ReplaceAllString(normalized, "_"), nil
}

func (s *ProfileService) profilePath(key string) string {
	return filepath.Join(s.cfg.DataDir, key+".json")
}

// GetProfile returns the stored profile, or an empty one when the user never
// saved a profile.
func (s *ProfileService) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ProfileService.GetProfile")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	key, err := fileKey(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key)
}

func (s *ProfileService) read(key string) (*models.Profile, error) {
	data, err := os.ReadFile(s.profilePath(key))
	if os.IsNotExist(err) {
		return models.DefaultProfile(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read profile")
	}
	profile := models.DefaultProfile()
	if err = json.Unmarshal(data, profile); err != nil {
		return nil, errors.Wrap(err, "failed to parse profile")
	}
	return profile, nil
}

func (s *ProfileService) write(key string, profile *models.Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode profile")
	}
	tmp, err := os.CreateTemp(s.cfg.DataDir, "."+key+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write profile")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write profile")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.profilePath(key)), "failed to store profile")
}

// SaveProfile replaces the stored profile. The signature image reference is
// kept when the incoming profile does not carry one; it only changes through
// SaveSignatureImage.
func (s *ProfileService) SaveProfile(ctx context.Context, email string, profile *models.Profile) (*models.Profile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ProfileService.SaveProfile")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	key, err := fileKey(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if profile == nil {
		err = errors.Wrap(mailerrors.ErrInvalidRequest, "profile is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(key)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	updated := *profile
	updated.SignatureImage = current.SignatureImage
	updated.UpdatedAt = s.now().UTC()
	if err = s.write(key, &updated); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Info("profile saved", zap.String("user", email), zap.String("operation", "save_profile"))
	return &updated, nil
}

// SaveSignatureImage stores a base64 data URL image and points the profile
// at it. It returns the storage key of the image.
func (s *ProfileService) SaveSignatureImage(ctx context.Context, email, dataURL string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ProfileService.SaveSignatureImage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	key, err := fileKey(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	matches := dataURLPattern.FindStringSubmatch(strings.TrimSpace(dataURL))
	if matches == nil {
		err = errors.Wrap(mailerrors.ErrInvalidRequest, "image must be a base64 data url")
		tracing.TraceErr(span, err)
		return "", err
	}
	image, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil || len(image) == 0 {
		err = errors.Wrap(mailerrors.ErrInvalidRequest, "image is not valid base64")
		tracing.TraceErr(span, err)
		return "", err
	}
	if s.cfg.MaxImageBytes > 0 && len(image) > s.cfg.MaxImageBytes {
		err = errors.Wrapf(mailerrors.ErrInvalidRequest, "image exceeds %d bytes", s.cfg.MaxImageBytes)
		tracing.TraceErr(span, err)
		return "", err
	}

	extension := "png"
	if utils.GetFileExtensionFromContentType(matches[1]) == "jpg" {
		extension = "jpg"
	}
	imageKey := "signature_" + key + "." + extension

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.read(key)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if err = s.storage.Upload(ctx, imageKey, image, utils.GetContentTypeFromFileExtension(extension)); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if previous := profile.SignatureImage; previous != "" && previous != imageKey {
		if err = s.storage.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to delete previous signature image", zap.String("user", email), zap.String("key", previous), zap.Error(err))
		}
	}

	profile.SignatureImage = imageKey
	profile.UpdatedAt = s.now().UTC()
	if err = s.write(key, profile); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	s.log.Info("signature image saved",
		zap.String("user", email),
		zap.String("operation", "save_signature_image"),
		zap.String("key", imageKey),
		zap.Int("size", len(image)))
	return imageKey, nil
}

// GetSignatureImage returns the stored signature image and its content type.
func (s *ProfileService) GetSignatureImage(ctx context.Context, email string) ([]byte, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ProfileService.GetSignatureImage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	profile, err := s.GetProfile(ctx, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}
	if profile.SignatureImage == "" {
		return nil, "", errors.Wrap(mailerrors.ErrNotFound, "no signature image")
	}
	image, err := s.storage.Download(ctx, profile.SignatureImage)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}
	return image, utils.GetContentTypeFromFileExtension(filepath.Ext(profile.SignatureImage)), nil
}

// Signature builds the signature appended to outgoing mail. It returns nil
// when the user has the signature disabled.
func (s *ProfileService) Signature(ctx context.Context, email string) (*models.Signature, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ProfileService.Signature")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	profile, err := s.GetProfile(ctx, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if !profile.SignatureEnabled {
		return nil, nil
	}

	signature := &models.Signature{}
	if profile.SignatureImage != "" {
		image, contentType, err := s.GetSignatureImage(ctx, email)
		if err != nil {
			// fall back to the text block
			s.log.Warn("signature image unavailable", zap.String("user", email), zap.Error(err))
			profile.SignatureImage = ""
		} else {
			signature.Image = image
			signature.ImageContentType = contentType
		}
	}
	signature.HTML = SignatureHTML(profile)
	if signature.HTML == "" {
		return nil, nil
	}
	return signature, nil
}
