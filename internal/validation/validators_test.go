package validation

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"line1\nline2", "line1\nline2"},
		{"tab\there", "tab\there"},
		{"bell\x07gone", "bellgone"},
		{"ゼロ幅\x00なし", "ゼロ幅なし"},
	}

	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidatePriority(t *testing.T) {
	t.Parallel()
	for _, v := range []string{"S", "A", "B", "C", "DEV", "IDEA"} {
		if err := ValidatePriority(v); err != nil {
			t.Errorf("ValidatePriority(%q) = %v", v, err)
		}
	}
	if err := ValidatePriority("Z"); err == nil {
		t.Error("ValidatePriority(Z) accepted")
	}
}

func TestValidateStatus(t *testing.T) {
	t.Parallel()
	for _, v := range []string{"unprocessed", "in_progress", "done", "on_hold", "watching", "reverted", "deleted"} {
		if err := ValidateStatus(v); err != nil {
			t.Errorf("ValidateStatus(%q) = %v", v, err)
		}
	}
	if err := ValidateStatus("archived"); err == nil {
		t.Error("ValidateStatus(archived) accepted")
	}
}

func TestStructValidation(t *testing.T) {
	t.Parallel()
	type payload struct {
		Priority string `validate:"required,task_priority"`
		Status   string `validate:"required,task_status"`
	}

	if err := Validate.Struct(&payload{Priority: "S", Status: "done"}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := Validate.Struct(&payload{Priority: "Z", Status: "done"}); err == nil {
		t.Error("invalid priority accepted")
	}
}
