package value_objects_test

import (
	"testing"

	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected value_objects.Status
		wantErr  bool
	}{
		{"pending", "pending", value_objects.StatusPending, false},
		{"in_progress", "in_progress", value_objects.StatusInProgress, false},
		{"completed", "completed", value_objects.StatusCompleted, false},
		{"case insensitive", "COMPLETED", value_objects.StatusCompleted, false},
		{"invalid", "archived", value_objects.StatusPending, true},
		{"empty", "", value_objects.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := value_objects.ParseStatus(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, value_objects.ErrInvalidStatus)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   value_objects.Status
		expected string
	}{
		{value_objects.StatusPending, "pending"},
		{value_objects.StatusInProgress, "in_progress"},
		{value_objects.StatusCompleted, "completed"},
		{value_objects.Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, value_objects.StatusPending.IsValid())
	assert.True(t, value_objects.StatusCompleted.IsValid())
	assert.False(t, value_objects.Status(99).IsValid())
}

func TestStatus_ZeroValueIsPending(t *testing.T) {
	var s value_objects.Status
	assert.Equal(t, value_objects.StatusPending, s)
}
