package interfaces

import "github.com/customeros/mailadmin/internal/models"

type MessageDecoder interface {
	DecodeSummary(raw *models.RawSummary) (*models.EmailSummary, error)
	DecodeMessage(raw *models.RawMessage) (*models.EmailDetail, error)
}
