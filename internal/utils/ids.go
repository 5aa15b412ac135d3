package utils

import (
	"crypto/sha256"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateMessageID creates a unique message ID for the email, already
// wrapped in angle brackets
func GenerateMessageID(domain, metadata string) string {
	id, err := gonanoid.Generate(alphabet, 12)
	if err != nil {
		panic(err)
	}

	timestamp := time.Now().UnixMicro()

	var hashComponent string
	if metadata != "" {
		hash := sha256.Sum256([]byte(metadata))
		hashComponent = fmt.Sprintf(".%x", hash[:4])
	}

	// Step 4: Format according to RFC 5322
	localPart := fmt.Sprintf("%d.%s%s", timestamp, id, hashComponent)
	return fmt.Sprintf("<%s@%s>", localPart, domain)
}

func GenerateNanoID(length int) string {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		panic(err)
	}
	return id
}

func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

// SynthesizeMessageID builds the fallback origin Message-ID used when a
// fetched message carries no Message-ID header, per spec §4.3 step 1.
func SynthesizeMessageID(uid uint32, accountID uint) string {
	return fmt.Sprintf("uid_%d_%d", uid, accountID)
}
