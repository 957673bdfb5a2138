package views

import (
	"backlog/internal/models"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

const dateLayout = "2006-01-02"

// RenderGames prints games as a table.
func RenderGames(w io.Writer, games []models.Game) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games yet. Use `add` to create one.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tGENRE\tSTATUS\tPROGRESS\tHOURS\tSCORE")
	for _, g := range games {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d%%\t%.1f\t%d\n",
			g.ID, g.Title, g.Platform, g.Genre, g.Status, g.Progress, g.HoursPlayed, g.Score)
	}
	_ = tw.Flush()
}

func renderGameDetail(w io.Writer, g *models.Game) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s (#%d) ==\n", g.Title, g.ID)
	fmt.Fprintf(tw, "Platform:\t%s\n", g.Platform)
	fmt.Fprintf(tw, "Genre:\t%s\n", g.Genre)
	fmt.Fprintf(tw, "Status:\t%s\n", g.Status)
	fmt.Fprintf(tw, "Progress:\t%d%%\n", g.Progress)
	fmt.Fprintf(tw, "Hours played:\t%.1f\n", g.HoursPlayed)
	fmt.Fprintf(tw, "Score:\t%d\n", g.Score)
	fmt.Fprintf(tw, "Started:\t%s\n", formatDate(g.StartedAt))
	fmt.Fprintf(tw, "Finished:\t%s\n", formatDate(g.FinishedAt))
	if g.CoverURL != "" {
		fmt.Fprintf(tw, "Cover:\t%s\n", g.CoverURL)
	}
	if g.PersonalNote != "" {
		fmt.Fprintf(tw, "Note:\t%s\n", g.PersonalNote)
	}
	_ = tw.Flush()
}

func renderStats(w io.Writer, s *models.Stats, stale bool) {
	if s == nil {
		fmt.Fprintln(w, "Stats: not available")
		return
	}
	header := "Stats"
	if stale {
		header += " (stale, last refresh failed)"
	}
	fmt.Fprintf(w, "%s: %d games, %d pending, %.1f h average", header, s.TotalGames, s.PendingGames, s.AverageHours)
	if s.MostPlayedGenre != "" {
		fmt.Fprintf(w, ", top genre %s", s.MostPlayedGenre)
	}
	fmt.Fprintln(w)

	counts := s.StatusCounts()
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", c.Status, c.Count))
	}
	fmt.Fprintf(w, "  by status: %s\n", strings.Join(parts, ", "))
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
