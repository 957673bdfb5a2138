package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    GameStatus
		wantErr bool
	}{
		{"Backlog", StatusBacklog, false},
		{"Playing", StatusPlaying, false},
		{"Completed", StatusCompleted, false},
		{"Dropped", StatusDropped, false},
		{"backlog", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGameStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestGame_DecodesBackendPayload(t *testing.T) {
	payload := `{"id":7,"title":"Celeste","platform":"PC","genre":"Platformer","status":"Playing",
		"progress":40,"hoursPlayed":12.5,"personalNote":"","score":9,
		"startedAt":"2024-01-01T00:00:00Z","finishedAt":null,"coverURL":"",
		"CreatedAt":"2024-01-01T00:00:00Z","UpdatedAt":"2024-01-02T00:00:00Z"}`

	var g Game
	require.NoError(t, json.Unmarshal([]byte(payload), &g))
	assert.Equal(t, uint(7), g.ID)
	assert.Equal(t, StatusPlaying, g.Status)
	assert.Equal(t, 12.5, g.HoursPlayed)
	require.NotNil(t, g.StartedAt)
	assert.Nil(t, g.FinishedAt)
	assert.Equal(t, 2, g.UpdatedAt.Day())
}

func TestStats_StatusCountsOrdering(t *testing.T) {
	s := &Stats{ByStatus: map[string]int{"Dropped": 1, "Backlog": 3, "Wishlist": 2}}
	got := s.StatusCounts()
	require.Len(t, got, 3)
	assert.Equal(t, "Backlog", got[0].Status)
	assert.Equal(t, "Dropped", got[1].Status)
	assert.Equal(t, "Wishlist", got[2].Status)

	var nilStats *Stats
	assert.Nil(t, nilStats.StatusCounts())
}

func TestUser_WellFormedAndDisplayName(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.WellFormed())
	assert.False(t, (&User{}).WellFormed())

	u := &User{ID: 1, Username: "gamer1"}
	assert.True(t, u.WellFormed())
	assert.Equal(t, "gamer1", u.DisplayName())
	u.FirstName = "Ana"
	assert.Equal(t, "Ana", u.DisplayName())
}

func TestProfile_ID(t *testing.T) {
	assert.Equal(t, uint(4), (&Profile{UserID: 4}).ID())
	assert.Equal(t, uint(9), (&Profile{User: &User{ID: 9}}).ID())
	assert.Equal(t, uint(0), (&Profile{}).ID())
}
