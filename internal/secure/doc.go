// Package secure holds the fetched hub token in protected memory.
//
// The token is sealed in a memguard enclave between the fetch step and the
// single point where it is substituted into the configuration file. While
// sealed, the value is:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Protected from buffer overflow via guard pages
//
// # Usage
//
// Seal a fetched value:
//
//	token := secure.NewToken(fetchedValue)
//	defer token.Destroy() // Always destroy when done
//
//	// At the point of use:
//	value, err := token.Reveal()
//	if err != nil {
//	    // Handle error
//	}
//
// # Platform Behavior
//
// Memory locking behavior varies by platform:
//
//   - Linux: Requires RLIMIT_MEMLOCK to be set appropriately
//   - macOS: Works out of the box
//   - Windows: Uses VirtualLock
//
// If mlock is unavailable or fails, memguard degrades to standard memory
// allocation rather than failing.
//
// # Security Guarantees
//
// Sealing limits the window in which the plaintext exists:
//
//   - Core dumps taken between fetch and patch will not contain the token
//   - The sealed token won't be swapped to disk
//   - Plaintext copies are wiped when their locked buffers are destroyed
//
// It does NOT protect against:
//
//   - Attackers with root access to the running process
//   - Hardware-level attacks (cold boot, DMA)
//   - The plaintext that necessarily ends up in the patched file
//
// For complete cleanup of all memguard data at process exit, main calls
// memguard.Purge() before os.Exit.
package secure
