package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Token is the fetched hub token sealed in an encrypted enclave. It exists
// so the plaintext is not sitting in ordinary memory between the key vault
// fetch and the file substitution.
//
// memguard.Enclave has no direct Destroy method. Destroy marks the token
// unusable and drops the enclave reference; the encrypted data is safe to
// garbage collect. Full cleanup happens via memguard.Purge() at exit.
type Token struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() calls and prevents use after
	// destroy
	destroyed bool
}

// NewToken seals a secret value in a protected memory region. The enclave
// encrypts the copy with XSalsa20Poly1305 and attempts to mlock it so it
// cannot be swapped out. An empty value yields an already-destroyed token;
// callers reject empty secrets before sealing.
func NewToken(value string) *Token {
	if value == "" {
		return &Token{destroyed: true}
	}

	return &Token{
		enclave: memguard.NewEnclave([]byte(value)),
	}
}

// Open decrypts and returns the token in a locked buffer. The caller MUST
// call Destroy() on the returned LockedBuffer when done to wipe the
// plaintext from memory.
//
// Example:
//
//	locked, err := token.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	value := locked.Bytes()
func (t *Token) Open() (*memguard.LockedBuffer, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.destroyed {
		// Return an empty locked buffer if already destroyed
		return memguard.NewBufferFromBytes([]byte{}), nil
	}

	return t.enclave.Open()
}

// Reveal returns the plaintext token value. This is the convenience form of
// Open for the substitution step, which needs the value as a string anyway.
// The intermediate locked buffer is wiped before returning.
func (t *Token) Reveal() (string, error) {
	locked, err := t.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy marks this Token as destroyed and prevents further use. The
// underlying encrypted enclave data is safe even without explicit
// destruction since it's encrypted at rest.
//
// This method is idempotent. After Destroy(), Open() returns an empty
// buffer and Reveal() returns the empty string.
func (t *Token) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return
	}

	t.enclave = nil
	t.destroyed = true
}
