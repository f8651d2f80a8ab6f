package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/studyplan/domain"
)

func TestNewStudySession(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	session, err := domain.NewStudySession(1, date, []string{"Graphs"}, 2.5, domain.FocusHigh, "Start early.")

	require.NoError(t, err)
	assert.Equal(t, 1, session.Day)
	assert.Equal(t, "2026-03-02", session.Date)
	assert.Equal(t, "Monday", session.DayName)
	assert.Equal(t, []string{"Graphs"}, session.Topics)
	assert.InDelta(t, 2.5, session.DurationHours, 0.001)
	assert.Equal(t, domain.FocusHigh, session.FocusLevel)
}

func TestNewStudySession_Validation(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		day      int
		topics   []string
		duration float64
		wantErr  error
	}{
		{"zero day", 0, []string{"Graphs"}, 2.0, domain.ErrInvalidSessionDay},
		{"no topics", 1, nil, 2.0, domain.ErrNoSessionTopics},
		{"too short", 1, []string{"Graphs"}, 0.25, domain.ErrInvalidSessionDuration},
		{"too long", 1, []string{"Graphs"}, 4.5, domain.ErrInvalidSessionDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewStudySession(tt.day, date, tt.topics, tt.duration, domain.FocusMedium, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewStudySession_DurationBounds(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewStudySession(1, date, []string{"Graphs"}, domain.MinSessionHours, domain.FocusLow, "")
	assert.NoError(t, err)

	_, err = domain.NewStudySession(1, date, []string{"Graphs"}, domain.MaxSessionHours, domain.FocusLow, "")
	assert.NoError(t, err)
}

func TestParseFocusLevel(t *testing.T) {
	for _, valid := range []string{"low", "medium", "high"} {
		level, err := domain.ParseFocusLevel(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, level.String())
	}

	_, err := domain.ParseFocusLevel("extreme")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"active", "completed"} {
		status, err := domain.ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	_, err := domain.ParseStatus("archived")
	assert.Error(t, err)
}

func TestParseSource(t *testing.T) {
	for _, valid := range []string{"ai", "rules"} {
		source, err := domain.ParseSource(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, source.String())
	}

	_, err := domain.ParseSource("manual")
	assert.Error(t, err)
}
