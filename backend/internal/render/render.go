// Package render persists analysis results as JSON and prints them as text tables.
// It holds no aggregation logic.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"tgosint/backend/internal/activity"
	"tgosint/backend/internal/constants"
	apperrors "tgosint/backend/pkg/errors"
	"tgosint/backend/pkg/jsonfile"
)

// MentionRow is one element of mentions.json
type MentionRow struct {
	Mention string `json:"mention"`
	Count   int    `json:"count"`
}

// ReplyRow is one element of replies.json
type ReplyRow struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// WriteMentions overwrites mentions.json in folder and returns its path
func WriteMentions(folder string, rows []MentionRow) (string, error) {
	if rows == nil {
		rows = []MentionRow{}
	}
	return write(filepath.Join(folder, constants.MentionsFileName), rows)
}

// WriteReplies overwrites replies.json in folder and returns its path
func WriteReplies(folder string, rows []ReplyRow) (string, error) {
	if rows == nil {
		rows = []ReplyRow{}
	}
	return write(filepath.Join(folder, constants.RepliesFileName), rows)
}

// WriteActivity overwrites activity.json in folder and returns its path
func WriteActivity(folder string, hist activity.Histogram) (string, error) {
	return write(filepath.Join(folder, constants.ActivityFileName), hist)
}

func write(path string, v any) (string, error) {
	if err := jsonfile.WriteAtomic(path, v); err != nil {
		return "", apperrors.NewOutputWriteFailed(path, err)
	}
	return path, nil
}

// PrintMentions prints up to limit mentions as an aligned table
func PrintMentions(w io.Writer, rows []MentionRow, limit int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No mentions found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Top-%d mentioned users:\n", shown(len(rows), limit))
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\n", row.Mention, row.Count)
	}
	return tw.Flush()
}

// PrintReplies prints up to limit reply pairs as an aligned table
func PrintReplies(w io.Writer, rows []ReplyRow, limit int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No replies found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Top-%d reply pairs:\n", shown(len(rows), limit))
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%s\t->\t%s\t%d\n", row.From, row.To, row.Count)
	}
	return tw.Flush()
}

// PrintActivity prints the hourly and weekday histograms
func PrintActivity(w io.Writer, hist activity.Histogram) error {
	if hist.Total == 0 {
		_, err := fmt.Fprintln(w, "No dated messages found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Messages by hour (%d total):\t\n", hist.Total)
	for hour, n := range hist.Hours {
		fmt.Fprintf(tw, "%02d:00\t%d\t\n", hour, n)
	}
	fmt.Fprintln(tw, "Messages by weekday:\t")
	for day, n := range hist.Weekdays {
		fmt.Fprintf(tw, "%s\t%d\t\n", activity.Weekdays[day], n)
	}
	return tw.Flush()
}

func shown(total, limit int) int {
	if limit > 0 && limit < total {
		return limit
	}
	return total
}
