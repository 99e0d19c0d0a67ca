package models

import "time"

type Profile struct {
	Name             string    `json:"name"`
	Position         string    `json:"position"`
	Company          string    `json:"company"`
	Phone            string    `json:"phone"`
	Website          string    `json:"website"`
	SignatureEnabled bool      `json:"signatureEnabled"`
	SignatureImage   string    `json:"signatureImage,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func DefaultProfile() *Profile {
	return &Profile{}
}
