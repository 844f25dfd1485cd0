//go:build darwin || freebsd

package arena

import "golang.org/x/sys/unix"

// grow extends the mapping to newLen bytes. Darwin and FreeBSD have no
// mremap(2); growth maps a fresh region, copies the live bytes over, and
// unmaps the old region. The byte offsets package heap hands out stay valid
// across the move since they are relative to the arena, never raw pointers.
func (a *Arena) grow(newLen uint64) error {
	b, err := unix.Mmap(-1, 0, int(newLen), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return ErrTooLarge
	}
	copy(b, a.buf)
	if a.buf != nil {
		_ = unix.Munmap(a.buf)
	}
	a.buf = b
	return nil
}

// Close releases the mapping. The arena must not be used afterward.
func (a *Arena) Close() error {
	if a.buf == nil {
		return nil
	}
	err := unix.Munmap(a.buf)
	a.buf = nil
	return err
}
