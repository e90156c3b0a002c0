package export

import (
	"fmt"
	"path"
	"strings"

	"github.com/reelwright/reelwright/internal/timeline"
)

// GenerateEDL writes a CMX3600-style edit decision list with one video event
// per scheduled clip. Source timecodes run from the head of each asset;
// record timecodes are the clip's place on the schedule.
func GenerateEDL(s timeline.Schedule, title string) string {
	fps := s.FPS
	if fps <= 0 {
		fps = timeline.FPS
	}

	lines := []string{
		fmt.Sprintf("TITLE: %s", title),
		"FCM: NON-DROP FRAME",
		"",
	}

	for i, e := range s.Clips {
		srcIn := framesToTimecode(0, fps)
		srcOut := framesToTimecode(e.DurationInFrames(), fps)
		recIn := framesToTimecode(e.StartFrame, fps)
		recOut := framesToTimecode(e.EndFrame, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clipName(e.Clip)),
			fmt.Sprintf("* MEDIA PATH:  %s", e.Clip.Source),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func clipName(c timeline.Clip) string {
	name := SanitizeName(path.Base(c.Source), 160)
	if name == "" || name == "." || name == "/" {
		return "untitled"
	}
	return name
}

func framesToTimecode(frames, fps int) string {
	if frames < 0 {
		frames = 0
	}
	ff := frames % fps
	totalSeconds := frames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, ff)
}
