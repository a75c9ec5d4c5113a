package asr

import "fmt"

// Segment is one timestamped transcription result, per spec §4.6:
// start_ms <= end_ms always holds, and confidence is in [0, 1].
type Segment struct {
	Text       string
	StartMs    int
	EndMs      int
	Confidence float32
}

// FormatPlain concatenates every segment's text in order, space-separated.
func FormatPlain(segments []Segment) string {
	var out string
	for i, seg := range segments {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out
}

// FormatSRT renders segments as SRT subtitles: index line, time range,
// text, blank line.
func FormatSRT(segments []Segment) string {
	var out string
	for i, seg := range segments {
		out += fmt.Sprintf("%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(seg.StartMs), srtTimestamp(seg.EndMs), seg.Text)
	}
	return out
}

// FormatVTT renders segments as WebVTT: a WEBVTT header, then per-segment
// time ranges using '.' as the millisecond separator.
func FormatVTT(segments []Segment) string {
	out := "WEBVTT\n\n"
	for _, seg := range segments {
		out += fmt.Sprintf("%s --> %s\n%s\n\n", vttTimestamp(seg.StartMs), vttTimestamp(seg.EndMs), seg.Text)
	}
	return out
}

func srtTimestamp(ms int) string { return formatTimestamp(ms, ",") }
func vttTimestamp(ms int) string { return formatTimestamp(ms, ".") }

func formatTimestamp(ms int, msSep string) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, msSep, frac)
}
