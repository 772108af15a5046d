package vmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/vmem"
)

func protectedStack(t *testing.T, capacity uint32) *vmem.Stack {
	t.Helper()

	u := vmem.New()

	s, err := vmem.NewStack(u, capacity)
	require.NoError(t, err)

	u.SetMode(vmem.Protected)

	return s
}

func TestStackPushPopWordRoundTrips(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushWord(0x1234))

	v, err := sa.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestStackPopOnEmptyUnderflows(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	_, err = sa.PopByte()
	assert.ErrorIs(t, err, vmem.ErrStackUnderflow)
}

func TestStackPushOnFullOverflows(t *testing.T) {
	s := protectedStack(t, 1)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushByte(1))

	err = sa.PushByte(2)
	assert.ErrorIs(t, err, vmem.ErrStackOverflow)
}

func TestStackFrameBoundsPopsToFloor(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushByte(0xaa))
	require.NoError(t, sa.SetFrameToTop())

	// the frame floor sits above the marker byte; popping past it underflows.
	_, err = sa.PopByte()
	assert.ErrorIs(t, err, vmem.ErrStackUnderflow)
}

func TestStackPeekWordReadsTopWithoutMovingSP(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushWord(0xbeef))

	v, err := sa.PeekWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), v)
	assert.Equal(t, int64(2), s.SP()) // peek must not move sp

	v, err = sa.PeekWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), v)
}

func TestStackPeekWordUnderflowsBelowFrameFloor(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	// a frame with a single byte above its floor has fewer than 2 bytes available: PeekWord
	// must reject this, not read one byte below the floor into the enclosing frame.
	require.NoError(t, sa.PushByte(0xaa))
	require.NoError(t, sa.SetFrameToTop())
	require.NoError(t, sa.PushByte(0xbb))

	_, err = sa.PeekWord()
	assert.ErrorIs(t, err, vmem.ErrStackUnderflow)
}

func TestStackPeekByteReadsTopWithoutMovingSP(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushByte(0x42))

	v, err := sa.PeekByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
	assert.Equal(t, int64(1), s.SP())
}

func TestStackFlushCollapsesToFrameFloor(t *testing.T) {
	s := protectedStack(t, 64)

	sa, err := s.GetAccessor(vmem.ReadWrite)
	require.NoError(t, err)

	require.NoError(t, sa.PushByte(0xaa))
	require.NoError(t, sa.SetFrameToTop())
	require.NoError(t, sa.PushWord(0x1111))

	require.NoError(t, sa.Flush())
	assert.True(t, sa.IsEmpty())
}
