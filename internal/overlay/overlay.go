// Package overlay turns a word-timed transcript into the drawtext filter
// chain that burns captions into the final video.
package overlay

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/accrandomash-cloud/Tiktokkk/internal/types"
)

// Fixed caption styling
const (
	font        = "Arial"
	fontSize    = 60
	fontColor   = "white"
	borderColor = "black"
	borderWidth = 2
)

// disallowed matches every character outside the caption allow-set. The
// strip is a safety measure against injection into the filter expression,
// not a linguistic transform.
var disallowed = regexp.MustCompile(`[^a-zA-Z0-9,.?! ]`)

// Instruction is one timed caption draw directive
type Instruction struct {
	Text  string
	Start float64
	End   float64
}

// Sanitize strips every character outside [A-Za-z0-9,.?! ]. Stripped
// characters are silently dropped; the result may be empty.
func Sanitize(s string) string {
	return disallowed.ReplaceAllString(s, "")
}

// Compile emits one instruction per transcript word, in transcript order.
// Words that sanitize to the empty string still produce an instruction;
// the composer tolerates empty drawtext text.
func Compile(t *types.Transcript) []Instruction {
	var instructions []Instruction
	for _, seg := range t.Segments {
		for _, word := range seg.Words {
			instructions = append(instructions, Instruction{
				Text:  Sanitize(word.Text),
				Start: word.Start,
				End:   word.End,
			})
		}
	}
	return instructions
}

// FilterGraph renders the instructions as a comma-joined drawtext chain.
// Each filter is time-gated by its enable window, so chain order only has
// to match transcript order. With no instructions the graph degenerates to
// the identity filter so ffmpeg still gets a valid -vf argument.
func FilterGraph(instructions []Instruction) string {
	if len(instructions) == 0 {
		return "null"
	}

	filters := make([]string, len(instructions))
	for i, in := range instructions {
		filters[i] = fmt.Sprintf(
			"drawtext=font='%s':text='%s':fontsize=%d:fontcolor=%s:bordercolor=%s:borderw=%d:x=(w-text_w)/2:y=(h-text_h)/2:enable='between(t,%g,%g)'",
			font, in.Text, fontSize, fontColor, borderColor, borderWidth, in.Start, in.End,
		)
	}
	return strings.Join(filters, ",")
}
