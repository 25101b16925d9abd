// Helpers for handling key material safely in memory.
package crypto

// Memzero overwrites every byte of slice in place so key material does not
// linger in memory longer than it has to. No-op on a nil slice.
func Memzero(slice []byte) {
	for i := range slice {
		slice[i] = 0
	}
}
