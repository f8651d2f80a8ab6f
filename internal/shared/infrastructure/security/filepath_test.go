package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateFilePath("")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, char := range dangerousChars {
			path := "/tmp/notes" + char + "txt"
			_, err := ValidateFilePath(path)
			assert.Error(t, err, "expected error for character %q", char)
			assert.Contains(t, err.Error(), "forbidden character")
		}
	})

	t.Run("accepts valid absolute path", func(t *testing.T) {
		tmpDir := t.TempDir()
		testFile := filepath.Join(tmpDir, "notes.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("lecture notes"), 0644))

		result, err := ValidateFilePath(testFile)
		require.NoError(t, err)

		// Temp dirs can live behind symlinks, compare resolved paths.
		expectedResolved, _ := filepath.EvalSymlinks(testFile)
		assert.Equal(t, expectedResolved, result)
	})

	t.Run("converts relative path to absolute", func(t *testing.T) {
		result, err := ValidateFilePath("notes.txt")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("cleans traversal components", func(t *testing.T) {
		result, err := ValidateFilePath("/tmp/a/../notes.txt")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/notes.txt", result)
	})
}

func TestSafeReadFile(t *testing.T) {
	t.Run("reads an existing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		testFile := filepath.Join(tmpDir, "material.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("photosynthesis is the process"), 0644))

		content, err := SafeReadFile(testFile)

		require.NoError(t, err)
		assert.Equal(t, "photosynthesis is the process", string(content))
	})

	t.Run("rejects paths with metacharacters before touching the disk", func(t *testing.T) {
		_, err := SafeReadFile("/tmp/material;rm.txt")
		assert.Error(t, err)
	})
}
