package models

import (
	"fmt"
	"time"
)

type GameStatus string

const (
	StatusBacklog   GameStatus = "Backlog"
	StatusPlaying   GameStatus = "Playing"
	StatusCompleted GameStatus = "Completed"
	StatusDropped   GameStatus = "Dropped"
)

var GameStatuses = []GameStatus{StatusBacklog, StatusPlaying, StatusCompleted, StatusDropped}

func (s GameStatus) Valid() bool {
	for _, st := range GameStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func ParseGameStatus(s string) (GameStatus, error) {
	for _, st := range GameStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown game status %q", s)
}

// Game is one tracked title as returned by the backend. ID is assigned by
// the server only.
type Game struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Platform     string     `json:"platform"`
	Genre        string     `json:"genre"`
	Status       GameStatus `json:"status"`
	Progress     int        `json:"progress"`
	HoursPlayed  float64    `json:"hoursPlayed"`
	PersonalNote string     `json:"personalNote"`
	Score        int        `json:"score"`
	StartedAt    *time.Time `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt"`
	CoverURL     string     `json:"coverURL"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// GameInput is the partial record sent on create and update.
type GameInput struct {
	Title        string     `json:"title"`
	Platform     string     `json:"platform"`
	Genre        string     `json:"genre"`
	Status       GameStatus `json:"status"`
	Progress     int        `json:"progress"`
	HoursPlayed  float64    `json:"hoursPlayed"`
	PersonalNote string     `json:"personalNote"`
	Score        int        `json:"score"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	CoverURL     string     `json:"coverURL"`
}

// Message is the confirmation body returned by delete.
type Message struct {
	Message string `json:"message"`
}
