package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeStore_IssueAndVerify(t *testing.T) {
	store := NewCodeStore()

	code, err := store.Issue("13812345678", CodeTypeRegister)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.False(t, store.Verify("13812345678", CodeTypeRegister, "000000"))
	assert.False(t, store.Verify("13812345678", CodeTypeLogin, code))
	assert.True(t, store.Verify("13812345678", CodeTypeRegister, code))

	// Consumed on success.
	assert.False(t, store.Verify("13812345678", CodeTypeRegister, code))
}

func TestCodeStore_ResendThrottle(t *testing.T) {
	store := NewCodeStore()

	_, err := store.Issue("13812345678", CodeTypeRegister)
	require.NoError(t, err)

	_, err = store.Issue("13812345678", CodeTypeRegister)
	assert.ErrorIs(t, err, ErrValidation)

	// A different purpose has its own throttle window.
	_, err = store.Issue("13812345678", CodeTypeResetPassword)
	require.NoError(t, err)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "138****5678", maskPhone("13812345678"))
	assert.Equal(t, "12345", maskPhone("12345"))
}
