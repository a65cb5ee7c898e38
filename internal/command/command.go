package command

import "github.com/tasuku-app/tasuku/internal/models"

// Kind discriminates parsed command variants.
type Kind int

const (
	// KindFreeText is a line matching no command shape; it is batched and
	// sent to the classifier as a new-task submission.
	KindFreeText Kind = iota
	// KindRename rewrites the title of the task at a display index.
	KindRename
	// KindSetPriority sets priority (and resets status to unprocessed).
	KindSetPriority
	// KindSetStatus sets the status of one or more tasks by display index.
	KindSetStatus
	// KindMeta is a fixed keyword command (list, help, dashboard link).
	KindMeta
	// KindMalformed looks command-like (leading index) but matched no
	// pattern. Reported as an error instead of being classified, so a
	// typo'd command never silently becomes a task.
	KindMalformed
)

// MetaAction identifies a fixed keyword command.
type MetaAction int

const (
	MetaList MetaAction = iota
	MetaHelp
	MetaDashboard
)

// Command is one parsed line of chat input.
type Command struct {
	Kind     Kind
	Index    int             // Rename, SetPriority: 1-based display index
	Indices  []int           // SetStatus: 1-based display indices
	Title    string          // Rename: the new title
	Priority models.Priority // SetPriority
	Status   models.Status   // SetStatus
	Meta     MetaAction      // Meta
	Raw      string          // FreeText, Malformed: the original line
}
