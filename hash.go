package docsync

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// hashSalt seeds the second half of the digest so the two 64-bit halves
// are computed over different inputs.
const hashSalt = "docsync/v1\x00"

// HashContent returns a stable 128-bit hex digest of content. Only the body
// is hashed, so metadata changes never register as content changes.
func HashContent(content string) string {
	lo := xxhash.Sum64String(content)

	d := xxhash.New()
	_, _ = d.WriteString(hashSalt)
	_, _ = d.WriteString(content)
	hi := d.Sum64()

	return fmt.Sprintf("%016x%016x", hi, lo)
}
