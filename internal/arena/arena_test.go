package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrowPreservesExistingBytes(t *testing.T) {
	a := New()
	defer a.Close()

	base, err := a.Grow(64)
	require.NoError(t, err)
	require.Equal(t, uint64(0), base)

	buf := a.Bytes()
	for i := range buf {
		buf[i] = byte(i)
	}

	base2, err := a.Grow(4096)
	require.NoError(t, err)
	require.Equal(t, uint64(64), base2)

	grown := a.Bytes()
	require.Equal(t, uint64(64+4096), a.Len())
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i), grown[i], "byte %d not preserved across grow", i)
	}
}

func TestLowHigh(t *testing.T) {
	a := New()
	defer a.Close()

	require.Equal(t, uint64(0), a.Low())
	require.Equal(t, uint64(0), a.High())

	_, err := a.Grow(4096)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a.Low())
	require.Equal(t, uint64(4095), a.High())
}

func TestBytewiseHelpers(t *testing.T) {
	dst := make([]byte, 8)
	src := []byte{1, 2, 3, 4}
	n := BytewiseCopy(dst, src)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, dst)

	BytewiseFill(dst, 0xAB)
	for _, b := range dst {
		require.Equal(t, byte(0xAB), b)
	}
}
