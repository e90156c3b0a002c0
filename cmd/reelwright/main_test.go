package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/reelwright/reelwright/internal/config"
	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/templates"
	"github.com/reelwright/reelwright/internal/timeline"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlatformsCommand(t *testing.T) {
	out, err := execute(t, "", "platforms", "tiktok", "youtube_shorts")
	if err != nil {
		t.Fatalf("platforms error = %v", err)
	}

	var profiles []platform.Profile
	if err := json.Unmarshal([]byte(out), &profiles); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(profiles) != 2 || profiles[0].Key != "tiktok" || profiles[1].Key != "youtube_shorts" {
		t.Errorf("profiles = %+v", profiles)
	}

	if _, err := execute(t, "", "platforms", "myspace"); !errors.Is(err, platform.ErrUnknownPlatform) {
		t.Errorf("unknown platform error = %v", err)
	}
}

func TestPlatformsCommand_All(t *testing.T) {
	out, err := execute(t, "", "platforms", "--format", "json")
	if err != nil {
		t.Fatalf("platforms error = %v", err)
	}
	var profiles []platform.Profile
	json.Unmarshal([]byte(out), &profiles)
	if len(profiles) != len(platform.Profiles()) {
		t.Errorf("got %d profiles, want %d", len(profiles), len(platform.Profiles()))
	}
}

func TestPlatformsCommand_Groups(t *testing.T) {
	out, err := execute(t, "", "platforms", "--groups", "tiktok", "instagram_feed", "instagram_reels")
	if err != nil {
		t.Fatalf("platforms --groups error = %v", err)
	}
	var groups []platform.RatioGroup
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(groups) != 2 || groups[0].Ratio != "9:16" || len(groups[0].Platforms) != 2 {
		t.Errorf("groups = %+v", groups)
	}

	if _, err := execute(t, "", "platforms", "--groups"); err == nil {
		t.Error("--groups without keys should fail")
	}
}

func TestPlatformsCommand_Table(t *testing.T) {
	out, err := execute(t, "", "platforms", "-f", "table", "tiktok")
	if err != nil {
		t.Fatalf("platforms table error = %v", err)
	}
	for _, want := range []string{"TikTok", "1080x1920", "600s", "bottom 20%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, "", "templates")
	if err != nil {
		t.Fatalf("templates error = %v", err)
	}
	var list []templates.Template
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(list) != 6 {
		t.Errorf("got %d templates, want 6", len(list))
	}

	out, err = execute(t, "", "templates", templates.HowTo, "-f", "table")
	if err != nil {
		t.Fatalf("templates show error = %v", err)
	}
	if !strings.Contains(out, "("+templates.HowTo+")") {
		t.Errorf("show output = %s", out)
	}

	if _, err := execute(t, "", "templates", "nope"); !errors.Is(err, templates.ErrUnknownTemplate) {
		t.Errorf("unknown template error = %v", err)
	}
}

const scheduleRequest = `{
  "platform": "tiktok",
  "clips": [
    {"source": "intro.mp4", "durationInFrames": 60},
    {"source": "cover.png", "kind": "image"}
  ],
  "overlays": [
    {"text": "Hello", "fromFrame": 10, "durationInFrames": 30},
    {"text": "World", "fromFrame": 20}
  ]
}`

func TestScheduleCommand_Stdin(t *testing.T) {
	out, err := execute(t, scheduleRequest, "schedule")
	if err != nil {
		t.Fatalf("schedule error = %v", err)
	}

	var comp struct {
		Width    int               `json:"width"`
		Height   int               `json:"height"`
		Schedule timeline.Schedule `json:"schedule"`
	}
	if err := json.Unmarshal([]byte(out), &comp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if comp.Width != 1080 || comp.Height != 1920 {
		t.Errorf("canvas = %dx%d", comp.Width, comp.Height)
	}
	if comp.Schedule.TotalFrames != 210 || len(comp.Schedule.Clips) != 2 || comp.Schedule.Clips[1].StartFrame != 60 {
		t.Errorf("schedule = %+v", comp.Schedule)
	}
}

func TestScheduleCommand_FileAndFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(path, []byte(scheduleRequest), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "schedule", path, "--frame", "0,25,100")
	if err != nil {
		t.Fatalf("schedule error = %v", err)
	}
	var samples []timeline.Sample
	if err := json.Unmarshal([]byte(out), &samples); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples", len(samples))
	}
	if samples[0].ActiveClip == nil || samples[0].ActiveClip.Clip.Source != "intro.mp4" || len(samples[0].ActiveOverlays) != 0 {
		t.Errorf("frame 0 = %+v", samples[0])
	}
	if len(samples[1].ActiveOverlays) != 2 || samples[1].ActiveOverlays[1].Text != "World" {
		t.Errorf("frame 25 overlays = %+v", samples[1].ActiveOverlays)
	}
	if samples[2].ActiveClip == nil || samples[2].ActiveClip.Clip.Source != "cover.png" {
		t.Errorf("frame 100 = %+v", samples[2])
	}
}

func TestScheduleCommand_Table(t *testing.T) {
	out, err := execute(t, scheduleRequest, "schedule", "-f", "table")
	if err != nil {
		t.Fatalf("schedule error = %v", err)
	}
	for _, want := range []string{"tiktok 9:16", "210 frames", "intro.mp4", "Hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestScheduleCommand_Export(t *testing.T) {
	out, err := execute(t, scheduleRequest, "schedule", "--export", "srt")
	if err != nil {
		t.Fatalf("schedule --export error = %v", err)
	}
	if !strings.HasPrefix(out, "1\n") || !strings.Contains(out, "Hello") {
		t.Errorf("srt output = %q", out)
	}

	if _, err := execute(t, scheduleRequest, "schedule", "--export", "mov"); err == nil {
		t.Error("unknown export format should fail")
	}
}

func TestScheduleCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"bad json", "{", []string{"schedule"}},
		{"missing file", "", []string{"schedule", "/nonexistent/req.json"}},
		{"disallowed ratio", scheduleRequest, []string{"schedule", "--ratio", "16:9"}},
		{"unknown platform", scheduleRequest, []string{"schedule", "--platform", "myspace"}},
		{"bad format", scheduleRequest, []string{"schedule", "-f", "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type memStore map[string]string

func (m memStore) GetConfig(ctx context.Context, key string) (string, error) {
	return m[key], nil
}

func (m memStore) SetConfig(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestEnsureAuthToken(t *testing.T) {
	store := memStore{}
	ctx := context.Background()

	first, err := ensureAuthToken(ctx, store)
	if err != nil {
		t.Fatalf("ensureAuthToken() error = %v", err)
	}
	if len(first) != 64 {
		t.Errorf("token length = %d, want 64", len(first))
	}

	second, _ := ensureAuthToken(ctx, store)
	if second != first {
		t.Error("token should be reused once stored")
	}
}

func TestServe_AlreadyRunning(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.toml")
	if err := os.WriteFile(path, []byte("data_dir = \""+filepath.ToSlash(dataDir)+"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvDataDir, "")
	t.Setenv(config.EnvPort, "")

	cfg, err := config.New(path)
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer held.Unlock()

	if err := serve(context.Background(), cfg, io.Discard); !errors.Is(err, errAlreadyRunning) {
		t.Errorf("serve() error = %v, want errAlreadyRunning", err)
	}
}
