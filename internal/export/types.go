package export

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatEDL    Format = "edl"
	FormatSRT    Format = "srt"
	FormatVTT    Format = "vtt"
	FormatFFmpeg Format = "ffmpeg"
)

var formats = map[Format]struct {
	ext         string
	contentType string
}{
	FormatEDL:    {".edl", "text/plain; charset=utf-8"},
	FormatSRT:    {".srt", "application/x-subrip"},
	FormatVTT:    {".vtt", "text/vtt"},
	FormatFFmpeg: {".sh", "text/x-shellscript"},
}

// ParseFormat accepts a format name in any case. An empty name means EDL.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatEDL, nil
	}
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("%w %q: must be one of edl, srt, vtt, ffmpeg", ErrUnknownFormat, s)
	}
	return f, nil
}

func (f Format) Ext() string {
	return formats[f].ext
}

func (f Format) ContentType() string {
	return formats[f].contentType
}

// ExportRequest asks for a draft to be written to a local directory.
type ExportRequest struct {
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
	Name      string `json:"name,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     Format `json:"format"`
	OutputPath string `json:"output_path"`
	ClipCount  int    `json:"clip_count"`
	CueCount   int    `json:"cue_count"`
}
