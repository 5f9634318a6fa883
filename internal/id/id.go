// Package id generates prefixed, sortable identifiers for MedLink records.
//
// IDs have the form PREFIX_base58random_unixmillis, e.g.
// JEX_4fz9kQ2m_1767139200000. The random component makes collisions
// implausible; the timestamp suffix keeps IDs roughly time-ordered for
// humans scanning logs and tables.
package id

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

const randomBytes = 6

// Generate returns a new identifier with the given prefix.
func Generate(prefix string) string {
	buf := make([]byte, randomBytes)
	// crypto/rand.Read only fails if the OS entropy source is broken,
	// in which case there are bigger problems than job IDs
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("id: entropy source unavailable: %v", err))
	}
	return fmt.Sprintf("%s_%s_%d", prefix, base58.Encode(buf), time.Now().UnixMilli())
}

// GenerateExecutionID returns an ID for a job execution record (JEX_*).
func GenerateExecutionID() string {
	return Generate("JEX")
}

// GenerateBackupID returns an ID for a backup record (BAK_*).
func GenerateBackupID() string {
	return Generate("BAK")
}
