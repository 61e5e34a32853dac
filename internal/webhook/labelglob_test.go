package webhook

import "testing"

func TestLabelMatches(t *testing.T) {
	tests := []struct {
		pattern, label string
		want           bool
	}{
		{"lgtm", "lgtm", true},
		{"lgtm", "approved", false},
		{"reviewed/*", "reviewed/backend", true},
		{"reviewed/*", "reviewed/backend/extra", false},
		{"reviewed/*", "unrelated", false},
	}
	for _, tt := range tests {
		if got := labelMatches(tt.pattern, tt.label); got != tt.want {
			t.Errorf("labelMatches(%q, %q) = %v, want %v", tt.pattern, tt.label, got, tt.want)
		}
	}
}

func TestIsLiteralLabel(t *testing.T) {
	if !isLiteralLabel("lgtm") {
		t.Error("plain label should be literal")
	}
	if isLiteralLabel("reviewed/*") {
		t.Error("glob pattern should not be literal")
	}
}

func TestAnyLabelMatches(t *testing.T) {
	labels := []string{"reviewed/backend", "size/L"}
	if !anyLabelMatches(labels, "reviewed/*") {
		t.Error("expected reviewed/* to match reviewed/backend")
	}
	if anyLabelMatches(labels, "reviewed/frontend") {
		t.Error("literal pattern should only match its exact label")
	}
}

func TestApplyMissingLabels_NeverSynthesizesAWildcardPattern(t *testing.T) {
	d := &Dispatcher{}
	gh := &recordingGitHub{}
	d.gh = gh
	d.log = discardLogger()

	d.applyMissingLabels(nil, dummyRepo(), 1, nil, []string{"reviewed/*", "lgtm"})

	if len(gh.addedLabels) != 1 || gh.addedLabels[0] != "lgtm" {
		t.Errorf("addedLabels = %v, want exactly [lgtm] (the glob pattern must never be applied literally)", gh.addedLabels)
	}
}
