package dto

import (
	"time"

	"github.com/customeros/mailadmin/internal/models"
)

type Pagination struct {
	Page     int `json:"page"`
	Limit    int `json:"limit"`
	Total    int `json:"total"`
	Returned int `json:"returned"`
}

type ListFolderResponse struct {
	Success    bool                   `json:"success"`
	Emails     []*models.EmailSummary `json:"emails"`
	Pagination Pagination             `json:"pagination"`
	FromCache  bool                   `json:"fromCache"`
}

type EmailResponse struct {
	Success bool                `json:"success"`
	Email   *models.EmailDetail `json:"email"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SendResponse struct {
	Success   bool   `json:"success"`
	MessageId string `json:"messageId"`
	Response  string `json:"response"`
}

type StatsResponse struct {
	Success bool                          `json:"success"`
	Stats   map[string]models.FolderStats `json:"stats"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

type FoldersResponse struct {
	Success bool              `json:"success"`
	Folders map[string]string `json:"folders"`
}

type AuthUser struct {
	Email           string    `json:"email"`
	AuthenticatedAt time.Time `json:"authenticatedAt"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    AuthUser `json:"user"`
}

type ProfileResponse struct {
	Success bool            `json:"success"`
	Profile *models.Profile `json:"profile"`
}

type SignatureUploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

type HealthResponse struct {
	Success     bool    `json:"success"`
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Version     string  `json:"version"`
	CachedLists int     `json:"cachedLists"`
	Connections int     `json:"connections"`
}
