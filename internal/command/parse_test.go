package command

import (
	"reflect"
	"testing"

	"github.com/tasuku-app/tasuku/internal/models"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"２ を A", "2 を A"},
		{"1　3　完了", "1 3 完了"},
		{"ＡＢＣ", "ABC"},
		{"牛乳を買う", "牛乳を買う"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseRename(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line      string
		wantIndex int
		wantTitle string
	}{
		{"2 を 牛乳を買う に修正", 2, "牛乳を買う"},
		{"2を牛乳を買うに修正", 2, "牛乳を買う"},
		{"10 新しいタイトル に修正", 10, "新しいタイトル"},
	}

	for _, tt := range tests {
		cmd := Parse(tt.line)
		if cmd.Kind != KindRename {
			t.Errorf("Parse(%q).Kind = %v, want KindRename", tt.line, cmd.Kind)
			continue
		}
		if cmd.Index != tt.wantIndex || cmd.Title != tt.wantTitle {
			t.Errorf("Parse(%q) = (%d, %q), want (%d, %q)", tt.line, cmd.Index, cmd.Title, tt.wantIndex, tt.wantTitle)
		}
	}
}

func TestParseSetPriority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line         string
		wantIndex    int
		wantPriority models.Priority
	}{
		{"2 を A", 2, models.PriorityA},
		{"2をA", 2, models.PriorityA},
		{"3 s", 3, models.PriorityS},
		{"1 に B", 1, models.PriorityB},
		{"7 c", 7, models.PriorityC},
	}

	for _, tt := range tests {
		cmd := Parse(tt.line)
		if cmd.Kind != KindSetPriority {
			t.Errorf("Parse(%q).Kind = %v, want KindSetPriority", tt.line, cmd.Kind)
			continue
		}
		if cmd.Index != tt.wantIndex || cmd.Priority != tt.wantPriority {
			t.Errorf("Parse(%q) = (%d, %q), want (%d, %q)", tt.line, cmd.Index, cmd.Priority, tt.wantIndex, tt.wantPriority)
		}
	}
}

func TestParseSetStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line        string
		wantIndices []int
		wantStatus  models.Status
	}{
		{"1 完了", []int{1}, models.StatusDone},
		{"1 3 完了", []int{1, 3}, models.StatusDone},
		{"1、2、3 削除", []int{1, 2, 3}, models.StatusDeleted},
		{"1と3 保留", []int{1, 3}, models.StatusOnHold},
		{"2 を 削除", []int{2}, models.StatusDeleted},
		{"削除 2", []int{2}, models.StatusDeleted},
		{"完了 1 3", []int{1, 3}, models.StatusDone},
		{"4 進行中", []int{4}, models.StatusInProgress},
		{"5 静観", []int{5}, models.StatusWatching},
		{"2 戻す", []int{2}, models.StatusUnprocessed},
	}

	for _, tt := range tests {
		cmd := Parse(tt.line)
		if cmd.Kind != KindSetStatus {
			t.Errorf("Parse(%q).Kind = %v, want KindSetStatus", tt.line, cmd.Kind)
			continue
		}
		if !reflect.DeepEqual(cmd.Indices, tt.wantIndices) || cmd.Status != tt.wantStatus {
			t.Errorf("Parse(%q) = (%v, %q), want (%v, %q)", tt.line, cmd.Indices, cmd.Status, tt.wantIndices, tt.wantStatus)
		}
	}
}

func TestParseMeta(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		want MetaAction
	}{
		{"一覧", MetaList},
		{"list", MetaList},
		{"使い方", MetaHelp},
		{"help", MetaHelp},
		{"ダッシュボード", MetaDashboard},
		{"dashboard", MetaDashboard},
	}

	for _, tt := range tests {
		cmd := Parse(tt.line)
		if cmd.Kind != KindMeta || cmd.Meta != tt.want {
			t.Errorf("Parse(%q) = (%v, %v), want (KindMeta, %v)", tt.line, cmd.Kind, cmd.Meta, tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()
	// Leading index plus separator but no recognizable command shape: these
	// are reported as errors, never sent to the classifier.
	lines := []string{
		"2 を X",
		"3 どこか",
		"1, 2",
		"5 を",
	}

	for _, line := range lines {
		if cmd := Parse(line); cmd.Kind != KindMalformed {
			t.Errorf("Parse(%q).Kind = %v, want KindMalformed", line, cmd.Kind)
		}
	}
}

func TestParseFreeText(t *testing.T) {
	t.Parallel()
	// Lines starting with digits but no separator are ordinary text.
	lines := []string{
		"牛乳を買う",
		"100円ショップで電池",
		"15時に歯医者",
		"完了報告書を書く",
	}

	for _, line := range lines {
		cmd := Parse(line)
		if cmd.Kind != KindFreeText {
			t.Errorf("Parse(%q).Kind = %v, want KindFreeText", line, cmd.Kind)
			continue
		}
		if cmd.Raw != line {
			t.Errorf("Parse(%q).Raw = %q, want the input", line, cmd.Raw)
		}
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	t.Parallel()
	// A rename whose title ends in a status word must stay a rename.
	cmd := Parse("1 を 資料を削除 に修正")
	if cmd.Kind != KindRename {
		t.Fatalf("Kind = %v, want KindRename", cmd.Kind)
	}
	if cmd.Title != "資料を削除" {
		t.Errorf("Title = %q, want 資料を削除", cmd.Title)
	}
}
