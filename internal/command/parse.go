package command

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/tasuku-app/tasuku/internal/models"
)

// Normalize folds full-width alphanumerics and ideographic spaces to their
// half-width equivalents, so １ and 1 are interchangeable and a full-width
// space acts as a separator. Applied once per message, before line splitting.
func Normalize(text string) string {
	return width.Fold.String(text)
}

// statusWords maps command keywords to statuses. 戻す reverts a task to the
// unprocessed inbox state.
var statusWords = map[string]models.Status{
	"完了":  models.StatusDone,
	"削除":  models.StatusDeleted,
	"進行中": models.StatusInProgress,
	"保留":  models.StatusOnHold,
	"静観":  models.StatusWatching,
	"戻す":  models.StatusUnprocessed,
}

const statusWordAlternatives = "完了|削除|進行中|保留|静観|戻す"

var (
	renamePattern       = regexp.MustCompile(`^([0-9]+)\s*(?:を|に)?\s*(.+?)\s*に修正$`)
	priorityPattern     = regexp.MustCompile(`^([0-9]+)\s*(?:を|に)?\s*([SABCsabc])$`)
	statusSuffixPattern = regexp.MustCompile(`^([0-9]+(?:[\s,、と]+[0-9]+)*)[\s,、と]*(?:を|に)?\s*(` + statusWordAlternatives + `)$`)
	statusPrefixPattern = regexp.MustCompile(`^(` + statusWordAlternatives + `)\s+([0-9]+(?:[\s,、と]+[0-9]+)*)$`)
	metaPattern         = regexp.MustCompile(`^(一覧|list|使い方|help|ダッシュボード|dashboard)$`)

	// commandLikePattern spots lines that start with an index and a
	// separator: these are malformed commands, not free text.
	commandLikePattern = regexp.MustCompile(`^[0-9]+(?:[\s,、と]|を|に)`)

	indexSeparators = regexp.MustCompile(`[\s,、と]+`)
)

// parsePattern pairs a regex with the builder for its command. The list is
// tried in order; the first match wins and no fallthrough occurs.
type parsePattern struct {
	re    *regexp.Regexp
	build func(m []string) Command
}

// patterns is ordered most specific first: rename (requires the trailing
// に修正 suffix), then single-target reprioritize, then the two multi-target
// status forms, then fixed meta keywords.
var patterns = []parsePattern{
	{renamePattern, buildRename},
	{priorityPattern, buildPriority},
	{statusSuffixPattern, buildStatusSuffix},
	{statusPrefixPattern, buildStatusPrefix},
	{metaPattern, buildMeta},
}

// Parse interprets one already-normalized line of chat input.
func Parse(line string) Command {
	line = strings.TrimSpace(line)

	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return p.build(m)
		}
	}

	if commandLikePattern.MatchString(line) {
		return Command{Kind: KindMalformed, Raw: line}
	}

	return Command{Kind: KindFreeText, Raw: line}
}

func buildRename(m []string) Command {
	index, _ := strconv.Atoi(m[1])
	return Command{
		Kind:  KindRename,
		Index: index,
		Title: strings.TrimSpace(m[2]),
	}
}

func buildPriority(m []string) Command {
	index, _ := strconv.Atoi(m[1])
	priority, _ := models.ParsePriority(m[2])
	return Command{
		Kind:     KindSetPriority,
		Index:    index,
		Priority: priority,
	}
}

func buildStatusSuffix(m []string) Command {
	return Command{
		Kind:    KindSetStatus,
		Indices: parseIndices(m[1]),
		Status:  statusWords[m[2]],
	}
}

func buildStatusPrefix(m []string) Command {
	return Command{
		Kind:    KindSetStatus,
		Indices: parseIndices(m[2]),
		Status:  statusWords[m[1]],
	}
}

func buildMeta(m []string) Command {
	var action MetaAction
	switch m[1] {
	case "一覧", "list":
		action = MetaList
	case "使い方", "help":
		action = MetaHelp
	default:
		action = MetaDashboard
	}
	return Command{Kind: KindMeta, Meta: action}
}

func parseIndices(s string) []int {
	parts := indexSeparators.Split(strings.TrimSpace(s), -1)
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		index, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		indices = append(indices, index)
	}
	return indices
}
