package templates

import (
	"errors"
	"testing"

	"github.com/reelwright/reelwright/internal/timeline"
)

func TestList(t *testing.T) {
	list, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{Listicle, ProductReview, HowTo, News, Comparison, Testimonial}
	if len(list) != len(want) {
		t.Fatalf("len(List()) = %d, want %d", len(list), len(want))
	}
	for i, key := range want {
		if list[i].Key != key {
			t.Errorf("List()[%d].Key = %q, want %q", i, list[i].Key, key)
		}
		if len(list[i].Scenes) == 0 {
			t.Errorf("template %q has no scenes", key)
		}
		if first := list[i].Scenes[0].Role; first != RoleHook {
			t.Errorf("template %q opens with %q, want hook", key, first)
		}
		if last := list[i].Scenes[len(list[i].Scenes)-1].Role; last != RoleCTA {
			t.Errorf("template %q closes with %q, want cta", key, last)
		}
	}
}

func TestGet(t *testing.T) {
	tmpl, err := Get(HowTo)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if tmpl.TotalSeconds() != 25 {
		t.Errorf("TotalSeconds() = %d, want 25", tmpl.TotalSeconds())
	}

	tmpl.Scenes[0].Role = "mutated"
	again, _ := Get(HowTo)
	if again.Scenes[0].Role != RoleHook {
		t.Error("Get returned shared scene storage")
	}

	if _, err := Get("vlog"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Get(vlog) error = %v, want ErrUnknownTemplate", err)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		in   Analysis
		want string
	}{
		{"explicit tutorial", Analysis{ArticleType: "tutorial"}, HowTo},
		{"explicit beats signals", Analysis{ArticleType: "news", HasSteps: true}, News},
		{"case study", Analysis{ArticleType: "case_study"}, Testimonial},
		{"review", Analysis{ArticleType: "review"}, ProductReview},
		{"steps", Analysis{HasSteps: true, HasQuotes: true}, HowTo},
		{"comparison", Analysis{HasComparison: true, HasProduct: true}, Comparison},
		{"quotes", Analysis{HasQuotes: true, HasProduct: true}, Testimonial},
		{"product", Analysis{HasProduct: true}, ProductReview},
		{"unknown type falls through", Analysis{ArticleType: "opinion"}, Listicle},
		{"nothing", Analysis{}, Listicle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.in); got != tt.want {
				t.Errorf("Match() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTimeline(t *testing.T) {
	clips, overlays := BuildTimeline([]Scene{
		{Role: RoleHook, Headline: "Hook", DurationSeconds: 3, Asset: "hook.png"},
		{Role: RolePoint, Headline: "No asset", DurationSeconds: 5},
		{Role: RoleCTA, Headline: "Read more", Asset: "cta.mp4", AssetKind: timeline.KindVideo},
	})

	if len(clips) != 2 {
		t.Fatalf("len(clips) = %d, want 2", len(clips))
	}
	if clips[0].DurationInFrames != 90 || clips[0].Kind != timeline.KindImage {
		t.Errorf("clip 0 = %+v, want 90 frame image", clips[0])
	}
	if clips[1].DurationInFrames != 150 || clips[1].Kind != timeline.KindVideo {
		t.Errorf("clip 1 = %+v, want 150 frame video", clips[1])
	}

	wantFrom := []int{0, 90, 240}
	if len(overlays) != 3 {
		t.Fatalf("len(overlays) = %d, want 3", len(overlays))
	}
	for i, from := range wantFrom {
		if overlays[i].FromFrame != from {
			t.Errorf("overlay %d FromFrame = %d, want %d", i, overlays[i].FromFrame, from)
		}
	}
	if overlays[2].DurationInFrames != 150 {
		t.Errorf("defaulted scene overlay = %d frames, want 150", overlays[2].DurationInFrames)
	}
}

func TestBuildTimeline_Empty(t *testing.T) {
	clips, overlays := BuildTimeline(nil)
	if len(clips) != 0 || len(overlays) != 0 {
		t.Errorf("BuildTimeline(nil) = %v, %v; want empty", clips, overlays)
	}
}
