package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tasuku-app/tasuku/internal/models"
)

const (
	inProgressGlyph = "▶"
	emptyListLine   = "タスクはありません"
)

// Sort returns the canonical display order without mutating the input:
// priority rank ascending, then manual sort order when present (rows without
// one sort after rows with one), then creation time oldest first. The 1-based
// position in this order is the display index chat commands refer to.
func Sort(tasks []*models.Task) []*models.Task {
	sorted := make([]*models.Task, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		switch {
		case a.SortOrder != nil && b.SortOrder != nil:
			if *a.SortOrder != *b.SortOrder {
				return *a.SortOrder < *b.SortOrder
			}
		case a.SortOrder != nil:
			return true
		case b.SortOrder != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return sorted
}

// List renders the numbered task list for chat replies. The input must
// already be in canonical order.
func List(tasks []*models.Task) string {
	if len(tasks) == 0 {
		return emptyListLine
	}

	var b strings.Builder
	for i, task := range tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		if task.Status == models.StatusInProgress {
			b.WriteString(inProgressGlyph)
			b.WriteByte(' ')
		}
		b.WriteString(task.Title)
		b.WriteString(" [")
		b.WriteString(string(task.Priority))
		b.WriteByte(']')
	}

	return b.String()
}
