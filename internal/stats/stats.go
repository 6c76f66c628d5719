// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/verte-zerg/wbdrift/internal/model"
)

// SessionMetrics computes speed in correct characters per minute and
// accuracy as a percentage of targets shown. Both are rounded to the nearest
// integer and are 0 when their denominator is 0.
func SessionMetrics(correct, attempts int, elapsed time.Duration) (speed, accuracy int) {
	if elapsed > 0 {
		minutes := elapsed.Minutes()
		speed = int(math.Round(float64(correct) / minutes))
	}
	if attempts > 0 {
		accuracy = int(math.Round(float64(correct) / float64(attempts) * 100))
	}
	return speed, accuracy
}

// RenderSummary prints the result of a finished session.
func RenderSummary(w io.Writer, s model.SessionSummary) error {
	if s.Attempts == 0 {
		_, err := fmt.Fprintln(w, "No targets shown.")
		return err
	}
	mode := "characters"
	if s.Mode == model.ModeMapping {
		mode = "mapping"
	}
	headers := []string{"Mode", "Duration", "Correct", "Shown", "Speed (chars/min)", "Accuracy"}
	rows := [][]string{{
		mode,
		s.EndedAt.Sub(s.StartedAt).Round(time.Second).String(),
		fmt.Sprintf("%d", s.Correct),
		fmt.Sprintf("%d", s.Attempts),
		fmt.Sprintf("%d", s.Speed),
		fmt.Sprintf("%d%%", s.Accuracy),
	}}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderMapping prints the mapping table sorted by key.
func RenderMapping(w io.Writer, mapping model.Mapping) error {
	if len(mapping) == 0 {
		_, err := fmt.Fprintln(w, "Mapping is empty.")
		return err
	}
	keys := mapping.Keys()
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, mapping[k]})
	}
	for _, line := range formatTable([]string{"Char", "Code"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d entries\n", len(mapping))
	return err
}
