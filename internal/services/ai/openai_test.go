package ai

import (
	"context"
	"errors"
	"testing"
)

func TestParseProposals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "clean array",
			content: `[{"title":"牛乳を買う","category":"買い物","priority":"B"}]`,
			want:    1,
		},
		{
			name:    "array wrapped in prose",
			content: "以下が分類結果です。\n```json\n[{\"title\":\"牛乳を買う\",\"category\":\"買い物\",\"priority\":\"B\"}]\n```",
			want:    1,
		},
		{
			name:    "empty titles dropped",
			content: `[{"title":"  ","category":"x","priority":"A"},{"title":"valid","category":"x","priority":"A"}]`,
			want:    1,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    0,
		},
		{
			name:    "no array at all",
			content: "すみません、分類できませんでした。",
			wantErr: true,
		},
		{
			name:    "malformed json inside brackets",
			content: `[{"title": ]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseProposals(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProposals: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d proposals, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseProposalsFields(t *testing.T) {
	t.Parallel()
	got, err := ParseProposals(`[{"title":" 牛乳を買う ","category":"買い物","priority":"B"}]`)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if got[0].Title != "牛乳を買う" {
		t.Errorf("Title = %q, want trimmed", got[0].Title)
	}
	if got[0].Category != "買い物" || got[0].Priority != "B" {
		t.Errorf("proposal = %+v", got[0])
	}
}

func TestDisabledClassifier(t *testing.T) {
	t.Parallel()
	_, err := Disabled{}.Classify(context.Background(), "anything")
	if !errors.Is(err, ErrClassifierDisabled) {
		t.Errorf("err = %v, want ErrClassifierDisabled", err)
	}
}
