package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	assert.Equal(t, ".pdf", Extension("report.pdf"))
	assert.Equal(t, ".pdf", Extension("REPORT.PDF"))
	assert.Equal(t, ".xlsx", Extension("dir/budget.XLSX"))
	assert.Equal(t, "", Extension("noextension"))
}

func TestValidateTenant(t *testing.T) {
	require.NoError(t, ValidateTenant("tenant-1"))

	err := ValidateTenant("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTenant)

	err = ValidateTenant("   ")
	assert.ErrorIs(t, err, ErrEmptyTenant)
}

func TestValidateUpload(t *testing.T) {
	supported := []string{".pdf"}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateUpload([]byte("%PDF"), "a.pdf", supported))
	})

	t.Run("empty content", func(t *testing.T) {
		err := ValidateUpload(nil, "a.pdf", supported)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("wrong extension", func(t *testing.T) {
		err := ValidateUpload([]byte("data"), "a.txt", supported)
		assert.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("extension is case-insensitive", func(t *testing.T) {
		assert.NoError(t, ValidateUpload([]byte("%PDF"), "A.PDF", supported))
	})
}
