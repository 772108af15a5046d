package vmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendragon-project/pendragon/internal/vmem"
)

func TestCreateContextRequiresUnprotectedMode(t *testing.T) {
	u := vmem.New()
	u.SetMode(vmem.Protected)

	_, err := u.CreateContext(1024)
	assert.ErrorIs(t, err, vmem.ErrModeViolation)
}

func TestCreateContextRejectsZeroSize(t *testing.T) {
	u := vmem.New()

	_, err := u.CreateContext(0)
	assert.ErrorIs(t, err, vmem.ErrZeroSize)
}

func TestReadByteFromUnallocatedBlockYieldsZero(t *testing.T) {
	u := vmem.New()

	id, err := u.CreateContext(1 << 16)
	require.NoError(t, err)

	v, err := u.ReadByte(id, 100)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v)
}

func TestWriteThenReadByteRoundTrips(t *testing.T) {
	u := vmem.New()

	id, err := u.CreateContext(1 << 16)
	require.NoError(t, err)

	require.NoError(t, u.WriteByte(id, 42, 0xab))

	v, err := u.ReadByte(id, 42)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), v)
}

func TestReadByteOutOfBoundsReported(t *testing.T) {
	u := vmem.New()

	id, err := u.CreateContext(16)
	require.NoError(t, err)

	_, err = u.ReadByte(id, 100)
	assert.ErrorIs(t, err, vmem.ErrAddressOOB)
}

func TestContextsDoNotOverlap(t *testing.T) {
	u := vmem.New()

	a, err := u.CreateContext(1024)
	require.NoError(t, err)

	b, err := u.CreateContext(1024)
	require.NoError(t, err)

	ca, _ := u.GetContext(a)
	cb, _ := u.GetContext(b)

	assert.False(t, ca.Contains(cb.Base()))
	assert.False(t, cb.Contains(ca.Base()))
}
