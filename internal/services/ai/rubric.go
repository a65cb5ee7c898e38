package ai

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PriorityGuide describes one priority bucket to the model.
type PriorityGuide struct {
	Name    string `yaml:"name"`
	Meaning string `yaml:"meaning"`
}

// Rubric drives the classification prompt: the category vocabulary and the
// priority definitions the model chooses from.
type Rubric struct {
	Preamble   string          `yaml:"preamble"`
	Categories []string        `yaml:"categories"`
	Priorities []PriorityGuide `yaml:"priorities"`
}

// DefaultRubric returns the built-in rubric used when no file is configured.
func DefaultRubric() Rubric {
	return Rubric{
		Preamble: "あなたはタスク管理アシスタントです。ユーザーの自由入力を1つ以上のタスクに分解してください。",
		Categories: []string{
			"仕事", "家事", "買い物", "日用品", "連絡", "勉強", "趣味", "その他",
		},
		Priorities: []PriorityGuide{
			{Name: "S", Meaning: "緊急かつ重要。今日中に着手すべきもの"},
			{Name: "A", Meaning: "重要。数日以内に対応するもの"},
			{Name: "B", Meaning: "通常。1週間程度の猶予があるもの"},
			{Name: "C", Meaning: "急がない。期限のないもの"},
			{Name: "DEV", Meaning: "開発・改善系の作業"},
			{Name: "IDEA", Meaning: "アイデアのメモ。実行予定なし"},
		},
	}
}

// LoadRubric reads a rubric from a YAML file, filling gaps from the default.
func LoadRubric(path string) (Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rubric{}, fmt.Errorf("failed to read rubric file: %w", err)
	}

	rubric := DefaultRubric()
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return Rubric{}, fmt.Errorf("failed to parse rubric file: %w", err)
	}

	return rubric, nil
}

// buildClassificationPrompt renders the rubric and user text into the
// single-shot classification prompt.
func buildClassificationPrompt(rubric Rubric, text string) string {
	var b strings.Builder

	b.WriteString(rubric.Preamble)
	b.WriteString("\n\n入力:\n")
	b.WriteString(text)

	b.WriteString("\n\nカテゴリは次の中から選んでください: ")
	b.WriteString(strings.Join(rubric.Categories, ", "))

	b.WriteString("\n\n優先度の基準:\n")
	for _, p := range rubric.Priorities {
		b.WriteString(fmt.Sprintf("- %s: %s\n", p.Name, p.Meaning))
	}

	b.WriteString(`
次の形式のJSON配列のみを返してください:
[{"title": "タスク名", "category": "カテゴリ", "priority": "S|A|B|C|DEV|IDEA"}]

複数のタスクが含まれる場合は配列に複数の要素を入れてください。JSON配列以外の文章は返さないでください。`)

	return b.String()
}
