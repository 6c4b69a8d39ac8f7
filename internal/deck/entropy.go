package deck

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// HashEntropy derives a deal index by hashing public round values: the
// logical height, the wall-clock timestamp and the acting account.
//
// This mirrors a chain-style execution environment where no private
// randomness exists. It is NOT cryptographically unpredictable: a
// participant who can predict or influence the hashed inputs (for example
// by choosing when to act) can bias which card is drawn.
type HashEntropy struct {
	Height int64
	Nano   int64
	Actor  string
}

// Pick returns a deterministic index in [0, remaining).
func (h HashEntropy) Pick(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", h.Height, h.Nano, h.Actor)))
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(remaining))
}
