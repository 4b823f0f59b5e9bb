// Package bookid allocates the short codes that identify library entries
// (and double as the bot-facing /command for each book).
package bookid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
)

// codeBytes yields 10 hex characters per code.
const codeBytes = 5

// ExistsFunc reports whether a code is already taken in the persistent
// store. Allocation history only lives in memory for the process lifetime,
// so without a store check a restart could re-issue a persisted code.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Allocator hands out unique book codes. Safe for concurrent use.
type Allocator struct {
	mu     sync.Mutex
	issued map[string]struct{}
	exists ExistsFunc
}

// New returns an Allocator. exists may be nil, in which case uniqueness is
// only guaranteed within this process.
func New(exists ExistsFunc) *Allocator {
	return &Allocator{
		issued: map[string]struct{}{},
		exists: exists,
	}
}

// Allocate draws random codes until one is unused, records it, and returns
// it. There is no retry bound; at 40 bits of entropy repeated collisions are
// negligible.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for {
		buf := make([]byte, codeBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", errors.WithStack(err)
		}
		code := hex.EncodeToString(buf)

		a.mu.Lock()
		_, taken := a.issued[code]
		a.mu.Unlock()
		if taken {
			continue
		}

		if a.exists != nil {
			taken, err := a.exists(ctx, code)
			if err != nil {
				return "", errors.WithStack(err)
			}
			if taken {
				continue
			}
		}

		a.mu.Lock()
		a.issued[code] = struct{}{}
		a.mu.Unlock()

		return code, nil
	}
}
