package utils

import (
	"crypto/sha256"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoIdAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateMessageID creates an RFC 5322 message id for outgoing mail
func GenerateMessageID(domain, metadata string) string {
	id := gonanoid.MustGenerate(nanoIdAlphabet, 12)

	timestamp := time.Now().UnixMicro()

	var hashComponent string
	if metadata != "" {
		hash := sha256.Sum256([]byte(metadata))
		hashComponent = fmt.Sprintf(".%x", hash[:4])
	}

	localPart := fmt.Sprintf("%d.%s%s", timestamp, id, hashComponent)
	return fmt.Sprintf("<%s@%s>", localPart, domain)
}

func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id := gonanoid.MustGenerate(nanoIdAlphabet, size)
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
