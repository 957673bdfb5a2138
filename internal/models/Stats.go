package models

import "sort"

// Stats is the server-computed snapshot of the collection.
type Stats struct {
	TotalGames      int            `json:"total_games"`
	ByStatus        map[string]int `json:"by_status"`
	AverageHours    float64        `json:"average_hours_played"`
	MostPlayedGenre string         `json:"most_played_genre"`
	PendingGames    int            `json:"pending_games"`
}

type StatusCount struct {
	Status string
	Count  int
}

// StatusCounts returns ByStatus ordered by the known statuses first, then
// any unknown ones alphabetically.
func (s *Stats) StatusCounts() []StatusCount {
	if s == nil || len(s.ByStatus) == 0 {
		return nil
	}
	out := make([]StatusCount, 0, len(s.ByStatus))
	seen := make(map[string]bool, len(s.ByStatus))
	for _, st := range GameStatuses {
		if n, ok := s.ByStatus[string(st)]; ok {
			out = append(out, StatusCount{Status: string(st), Count: n})
			seen[string(st)] = true
		}
	}
	var rest []string
	for k := range s.ByStatus {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, StatusCount{Status: k, Count: s.ByStatus[k]})
	}
	return out
}
