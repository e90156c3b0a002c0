package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/templates"
)

func newPlatformsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "platforms [key...]",
		Short: "List publishing platforms and their constraints",
		Long: "List publishing platforms. With keys, show only those platforms; " +
			"with --groups, bucket the keys by default aspect ratio.",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, _ := cmd.Flags().GetBool("groups")
			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if groups {
				if len(args) == 0 {
					return fmt.Errorf("--groups needs at least one platform key")
				}
				return printGroups(cmd, out, platform.GroupByRatio(args))
			}

			profiles := platform.Profiles()
			if len(args) > 0 {
				profiles = profiles[:0]
				for _, key := range args {
					p, err := platform.Lookup(key)
					if err != nil {
						return err
					}
					profiles = append(profiles, p)
				}
			}
			return printProfiles(cmd, out, profiles)
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().Bool("groups", false, "Group the given platforms by default ratio")
	return cmd
}

func printProfiles(cmd *cobra.Command, format string, profiles []platform.Profile) error {
	if format == formatJSON {
		return writeJSON(cmd, profiles)
	}

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.Key,
			p.Name,
			strings.Join(p.Ratios, ", "),
			fmt.Sprintf("%dx%d", p.Dimensions.Width, p.Dimensions.Height),
			strconv.Itoa(p.MaxDuration) + "s",
			safeZoneLabel(p.SafeZones),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Key", "Name", "Ratios", "Size", "Max", "Safe zones"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

func safeZoneLabel(z platform.SafeZones) string {
	var parts []string
	for _, e := range []struct {
		name string
		pct  int
	}{{"top", z.Top}, {"right", z.Right}, {"bottom", z.Bottom}, {"left", z.Left}} {
		if e.pct > 0 {
			parts = append(parts, fmt.Sprintf("%s %d%%", e.name, e.pct))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func printGroups(cmd *cobra.Command, format string, groups []platform.RatioGroup) error {
	if format == formatJSON {
		return writeJSON(cmd, groups)
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Ratio, strings.Join(g.Platforms, ", ")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Ratio", "Platforms"}, rows, nil))
	return nil
}

func newTemplatesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "templates [key]",
		Short: "List storyboard templates, or show one template's scenes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				t, err := templates.Get(args[0])
				if err != nil {
					return err
				}
				return printTemplate(cmd, out, t)
			}

			list, err := templates.List()
			if err != nil {
				return err
			}
			if out == formatJSON {
				return writeJSON(cmd, list)
			}
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				rows = append(rows, []string{t.Key, t.Name, strconv.Itoa(len(t.Scenes)), strconv.Itoa(t.TotalSeconds()) + "s"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Name", "Scenes", "Length"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	addFormatFlag(cmd, &format)
	return cmd
}

func printTemplate(cmd *cobra.Command, format string, t templates.Template) error {
	if format == formatJSON {
		return writeJSON(cmd, t)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n%s\nMusic: %s, pacing: %s\n\n", t.Name, t.Key, t.Description, t.MusicMood, t.VoicePacing)

	rows := make([][]string, 0, len(t.Scenes))
	for i, s := range t.Scenes {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Role, strconv.Itoa(s.Duration) + "s", s.Position, s.Hint})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Role", "Length", "Position", "Hint"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}
