package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/export"
	"github.com/reelwright/reelwright/internal/logging"
	"github.com/reelwright/reelwright/internal/timeline"
)

func newScheduleCommand() *cobra.Command {
	var (
		format   string
		frames   []int
		exportAs string
		platform string
		ratio    string
	)

	cmd := &cobra.Command{
		Use:   "schedule [file]",
		Short: "Compose a clip and overlay list and print its schedule",
		Long: "Read a composition request as JSON from file (or stdin when file is omitted or \"-\") " +
			"and print the frame schedule. --frame samples individual frames; --export prints an " +
			"edl, srt, vtt or ffmpeg rendition instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd, args)
			if err != nil {
				return err
			}
			if platform != "" {
				req.Platform = platform
			}
			if ratio != "" {
				req.Ratio = ratio
			}

			comp, err := composer.NewService(logging.Discard()).Compose(cmd.Context(), req)
			if err != nil {
				return err
			}

			if exportAs != "" {
				f, err := export.ParseFormat(exportAs)
				if err != nil {
					return err
				}
				body, err := export.Render(f, comp, "reelwright")
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}

			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if len(frames) > 0 {
				samples := make([]timeline.Sample, len(frames))
				for i, f := range frames {
					samples[i] = timeline.SampleFrame(comp.Schedule, f)
				}
				if out == formatJSON {
					return writeJSON(cmd, samples)
				}
				printSamples(cmd, samples)
				return nil
			}

			if out == formatJSON {
				return writeJSON(cmd, comp)
			}
			printSchedule(cmd, comp)
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().IntSliceVar(&frames, "frame", nil, "Sample these frames (repeatable or comma separated)")
	cmd.Flags().StringVar(&exportAs, "export", "", "Print an export instead: edl, srt, vtt or ffmpeg")
	cmd.Flags().StringVar(&platform, "platform", "", "Override the request's platform")
	cmd.Flags().StringVar(&ratio, "ratio", "", "Override the request's aspect ratio")
	return cmd
}

func readRequest(cmd *cobra.Command, args []string) (composer.Request, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return composer.Request{}, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req composer.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return composer.Request{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

func printSchedule(cmd *cobra.Command, comp *composer.Composition) {
	w := cmd.OutOrStdout()
	s := comp.Schedule

	target := "custom canvas"
	if comp.Platform != "" {
		target = comp.Platform + " " + comp.Ratio
	}
	fmt.Fprintf(w, "%s, %dx%d, %d frames (%.2fs at %d fps)\n", target, comp.Width, comp.Height, s.TotalFrames, s.DurationSeconds(), s.FPS)
	if comp.Truncated {
		fmt.Fprintf(w, "truncated to the platform limit of %d frames\n", comp.MaxFrames)
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(s.Clips))
	for _, e := range s.Clips {
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			e.Clip.Source,
			string(e.Clip.Kind),
			strconv.Itoa(e.StartFrame),
			strconv.Itoa(e.EndFrame),
			strconv.Itoa(e.DurationInFrames()),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Source", "Kind", "Start", "End", "Frames"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))

	if len(s.Overlays) == 0 {
		return
	}
	rows = rows[:0]
	for i, o := range s.Overlays {
		rows = append(rows, []string{strconv.Itoa(i), o.Text, strconv.Itoa(o.FromFrame), strconv.Itoa(o.EndFrame())})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Text", "From", "End"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
	))
}

func printSamples(cmd *cobra.Command, samples []timeline.Sample) {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		clip := "-"
		if s.ActiveClip != nil {
			clip = s.ActiveClip.Clip.Source
		}
		texts := make([]string, len(s.ActiveOverlays))
		for i, o := range s.ActiveOverlays {
			texts[i] = strconv.Quote(o.Text)
		}
		overlays := "-"
		if len(texts) > 0 {
			overlays = strings.Join(texts, "\n")
		}
		rows = append(rows, []string{strconv.Itoa(s.Frame), clip, overlays})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Frame", "Clip", "Overlays (bottom to top)"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
}
