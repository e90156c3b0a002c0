package export

import (
	"testing"

	"github.com/reelwright/reelwright/internal/timeline"
)

func TestGenerateSRT(t *testing.T) {
	s := timeline.Build(nil, []timeline.Overlay{
		{Text: "Second", FromFrame: 90, DurationInFrames: 45},
		{Text: "First\n\nline", FromFrame: 0, DurationInFrames: 30},
		{Text: "   ", FromFrame: 10},
	})

	want := "1\n00:00:00,000 --> 00:00:01,000\nFirst line\n\n" +
		"2\n00:00:03,000 --> 00:00:04,500\nSecond\n\n"

	if got := GenerateSRT(s); got != want {
		t.Errorf("GenerateSRT() =\n%q\nwant\n%q", got, want)
	}
}

func TestGenerateVTT(t *testing.T) {
	s := timeline.Build(nil, []timeline.Overlay{{Text: "Hi", FromFrame: 10, DurationInFrames: 30}})

	want := "WEBVTT\n\n00:00:00.333 --> 00:00:01.333\nHi\n\n"
	if got := GenerateVTT(s); got != want {
		t.Errorf("GenerateVTT() =\n%q\nwant\n%q", got, want)
	}
}

func TestCueText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Before --> after", "Before -> after"},
		{"long --->arrow", "long ->arrow"},
		{"a\n-->\nb", "a -> b"},
		{"plain - dash", "plain - dash"},
	}

	for _, tt := range tests {
		if got := cueText(tt.in); got != tt.want {
			t.Errorf("cueText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateVTT_ArrowInText(t *testing.T) {
	s := timeline.Build(nil, []timeline.Overlay{{Text: "Step 1 --> Step 2", FromFrame: 0, DurationInFrames: 30}})

	want := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nStep 1 -> Step 2\n\n"
	if got := GenerateVTT(s); got != want {
		t.Errorf("GenerateVTT() =\n%q\nwant\n%q", got, want)
	}
}

func TestGenerateVTT_Empty(t *testing.T) {
	if got := GenerateVTT(timeline.Build(nil, nil)); got != "WEBVTT\n\n" {
		t.Errorf("GenerateVTT() = %q", got)
	}
}

func TestCueTime(t *testing.T) {
	tests := []struct {
		frame int
		want  string
	}{
		{0, "00:00:00,000"},
		{1, "00:00:00,033"},
		{45, "00:00:01,500"},
		{30 * 3661, "01:01:01,000"},
	}
	for _, tt := range tests {
		if got := cueTime(tt.frame, 30, ','); got != tt.want {
			t.Errorf("cueTime(%d) = %s, want %s", tt.frame, got, tt.want)
		}
	}
}
