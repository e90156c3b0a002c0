// Package export turns a composition into artifacts other tools consume: an
// edit decision list, subtitle tracks and an ffmpeg render plan.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelwright/reelwright/internal/composer"
)

const defaultName = "reelwright_export"

// Render produces the file body for format.
func Render(f Format, comp *composer.Composition, title string) (string, error) {
	switch f {
	case FormatEDL:
		return GenerateEDL(comp.Schedule, title), nil
	case FormatSRT:
		return GenerateSRT(comp.Schedule), nil
	case FormatVTT:
		return GenerateVTT(comp.Schedule), nil
	case FormatFFmpeg:
		plan, err := BuildPlan(comp, baseName(title)+".mp4")
		if err != nil {
			return "", err
		}
		return "#!/bin/sh\n" + plan.Command() + "\n", nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// FileName is the sanitized download name for title in format.
func FileName(title string, f Format) string {
	return baseName(title) + f.Ext()
}

func baseName(title string) string {
	if name := SanitizeName(title, 120); name != "" {
		return name
	}
	return defaultName
}

// WriteFile renders comp into dir and returns what was written.
func WriteFile(req ExportRequest, comp *composer.Composition) (*ExportResponse, error) {
	f, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	body, err := Render(f, comp, req.Name)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(req.OutputDir, FileName(req.Name, f))
	mode := os.FileMode(0o644)
	if f == FormatFFmpeg {
		mode = 0o755
	}
	if err := os.WriteFile(outputPath, []byte(body), mode); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &ExportResponse{
		Status:     "ok",
		Format:     f,
		OutputPath: outputPath,
		ClipCount:  len(comp.Schedule.Clips),
		CueCount:   len(cues(comp.Schedule.Overlays)),
	}, nil
}
