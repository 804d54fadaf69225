package circbuff_test

import (
	"strings"
	"testing"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/circbuff"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircBuff_Write_Zero(t *testing.T) {
	cb := circbuff.NewCircBuff(64)

	assert.True(t, cb.IsEmpty())
	assert.False(t, cb.IsFull())
	assert.Equal(t, 0, cb.Len())
	assert.Equal(t, 64, cb.Free())

	// write 4 * 4 = 16 bytes
	n := cb.Write([]byte(strings.Repeat("abcd", 4)))
	assert.Equal(t, 16, n)
	assert.Equal(t, 16, cb.Len())
	assert.Equal(t, 48, cb.Free())
	assert.Equal(t, []byte(strings.Repeat("abcd", 4)), cb.Bytes())

	// write 48 bytes, should fill
	n = cb.Write([]byte(strings.Repeat("abcd", 12)))
	assert.Equal(t, 48, n)
	assert.Equal(t, 64, cb.Len())
	assert.Equal(t, 0, cb.Free())
	assert.True(t, cb.IsFull())
	assert.Equal(t, []byte(strings.Repeat("abcd", 16)), cb.Bytes())

	// full: nothing stored, no error
	n = cb.Write([]byte("abcd"))
	assert.Equal(t, 0, n)
	assert.Equal(t, 64, cb.Len())
}

func TestCircBuff_ShortWrite(t *testing.T) {
	cb := circbuff.NewCircBuff(8)
	free := cb.Free()
	n := cb.Write([]byte("0123456789"))
	assert.Equal(t, 8, n)
	assert.LessOrEqual(t, n, free)
	assert.Equal(t, []byte("01234567"), cb.Bytes())
}

func TestCircBuff_Read(t *testing.T) {
	cb := circbuff.NewCircBuff(64)
	buf := make([]byte, 1024)

	// empty read is not an error
	assert.Equal(t, 0, cb.Read(buf))

	cb.Write([]byte(strings.Repeat("abcd", 4)))
	n := cb.Read(buf)
	assert.Equal(t, 16, n)
	assert.Equal(t, strings.Repeat("abcd", 4), string(buf[:n]))
	assert.Equal(t, 0, cb.Len())
	assert.Equal(t, 64, cb.Free())

	// read partial
	cb = circbuff.NewCircBuff(64)
	cb.Write([]byte(strings.Repeat("abcd", 4)))
	buf = make([]byte, 4)
	n = cb.Read(buf)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(buf))
	assert.Equal(t, 12, cb.Len())
	assert.Equal(t, 52, cb.Free())
}

func TestCircBuff_Wraparound(t *testing.T) {
	cb := circbuff.NewCircBuff(8)
	buf := make([]byte, 8)

	require.Equal(t, 6, cb.Write([]byte("ABCDEF")))
	require.Equal(t, 4, cb.Read(buf[:4]))
	assert.Equal(t, "ABCD", string(buf[:4]))

	// tail at 6, head at 4: this write wraps
	n := cb.Write([]byte("GHIJKL"))
	assert.Equal(t, 6, n)
	assert.True(t, cb.IsFull())
	assert.Equal(t, []byte("EFGHIJKL"), cb.Bytes())

	n = cb.Read(buf)
	assert.Equal(t, 8, n)
	assert.Equal(t, "EFGHIJKL", string(buf))
	assert.True(t, cb.IsEmpty())
}

func TestCircBuff_FIFO(t *testing.T) {
	cb := circbuff.NewCircBuff(7)
	var in, out []byte
	buf := make([]byte, 5)
	for i := 0; i < 50; i++ {
		chunk := []byte{byte(i), byte(i + 1), byte(i + 2)}
		n := cb.Write(chunk)
		in = append(in, chunk[:n]...)
		n = cb.Read(buf[:i%5+1])
		out = append(out, buf[:n]...)
	}
	out = append(out, cb.Drain()...)
	assert.Equal(t, in, out)
}

func TestCircBuff_Clear(t *testing.T) {
	cb := circbuff.NewCircBuff(8)
	cb.Write([]byte("abc"))
	cb.Clear()
	assert.Equal(t, 0, cb.Len())
	assert.Equal(t, 8, cb.Capacity())
	cb.Clear()
	assert.True(t, cb.IsEmpty())
}

func TestCircBuff_Drain(t *testing.T) {
	cb := circbuff.NewCircBuff(4)
	assert.Nil(t, cb.Drain())

	cb.Write([]byte("wxyz"))
	cb.Read(make([]byte, 3))
	cb.Write([]byte("abc"))
	assert.Equal(t, []byte("zabc"), cb.Drain())
	assert.True(t, cb.IsEmpty())
}

func TestCircBuff_Replace(t *testing.T) {
	cb := circbuff.NewCircBuff(4)
	cb.Write([]byte("abcd"))
	cb.Read(make([]byte, 2))
	cb.Write([]byte("ef"))

	preserved := cb.Drain()
	require.NoError(t, cb.Replace(8, preserved))
	assert.Equal(t, 8, cb.Capacity())
	assert.Equal(t, 4, cb.Len())
	assert.Equal(t, 4, cb.Free())
	assert.Equal(t, []byte("cdef"), cb.Bytes())

	// exactly full after replace, tail wraps to 0
	require.NoError(t, cb.Replace(4, cb.Drain()))
	assert.True(t, cb.IsFull())
	assert.Equal(t, 0, cb.Write([]byte("x")))
	assert.Equal(t, []byte("cdef"), cb.Bytes())
}

func TestCircBuff_Replace_TooSmall(t *testing.T) {
	cb := circbuff.NewCircBuff(8)
	cb.Write([]byte("abcdef"))

	err := cb.Replace(4, cb.Bytes())
	assert.True(t, errors.Is(err, circbuff.ErrCapacity))
	assert.Equal(t, 8, cb.Capacity())
	assert.Equal(t, []byte("abcdef"), cb.Bytes())

	err = cb.Replace(0, nil)
	assert.True(t, errors.Is(err, circbuff.ErrCapacity))
	assert.Equal(t, 8, cb.Capacity())
}

func TestCircBuff_Replace_Huge(t *testing.T) {
	cb := circbuff.NewCircBuff(8)
	cb.Write([]byte("ABCDEFGH"))

	for _, c := range []int{circbuff.MaxCapacity + 1, 1 << 62} {
		var err error
		assert.NotPanics(t, func() { err = cb.Replace(c, cb.Bytes()) })
		assert.True(t, errors.Is(err, circbuff.ErrCapacity))
		assert.Equal(t, 8, cb.Capacity())
		assert.Equal(t, []byte("ABCDEFGH"), cb.Bytes())
	}

	assert.NoError(t, circbuff.CheckCapacity(circbuff.MaxCapacity))
	assert.True(t, errors.Is(circbuff.CheckCapacity(0), circbuff.ErrCapacity))
}
