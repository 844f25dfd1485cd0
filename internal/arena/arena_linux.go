//go:build linux

package arena

import "golang.org/x/sys/unix"

// grow extends the mapping to newLen bytes. The first call establishes an
// anonymous mapping; later calls use mremap(MREMAP_MAYMOVE) so the OS can
// relocate the mapping rather than forcing the caller to preallocate a
// reservation up front, matching how a real sbrk-backed heap keeps growing
// in place until the surrounding address space is exhausted.
func (a *Arena) grow(newLen uint64) error {
	if a.buf == nil {
		b, err := unix.Mmap(-1, 0, int(newLen), unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			return ErrTooLarge
		}
		a.buf = b
		return nil
	}

	b, err := unix.Mremap(a.buf, int(newLen), unix.MREMAP_MAYMOVE)
	if err != nil {
		return ErrTooLarge
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
