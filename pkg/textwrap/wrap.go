// Package textwrap lays out card text into fixed-width lines.
package textwrap

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Wrap splits text into lines of at most maxChars display cells using greedy
// accumulation. A line is committed once appending a token pushes it past
// maxChars, and the committed line keeps that token. The next line then starts
// with the same token again. The final token always commits the pending line.
//
// Blank input yields no lines. Words are never broken or hyphenated.
func Wrap(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := make([]string, 0, 8)
	for i, word := range words {
		line = append(line, word)
		candidate := strings.Join(line, " ")
		if runewidth.StringWidth(candidate) > maxChars || i == len(words)-1 {
			lines = append(lines, candidate)
			line = append(line[:0], word)
		}
	}
	return lines
}

// Block is wrapped text with a fixed vertical advance per line.
type Block struct {
	Lines      []string
	LineHeight float64
}

// NewBlock wraps text and records the line height used to stack its lines.
func NewBlock(text string, maxChars int, lineHeight float64) Block {
	return Block{
		Lines:      Wrap(text, maxChars),
		LineHeight: lineHeight,
	}
}

// Offset is the vertical offset of line i relative to the first line.
func (b Block) Offset(i int) float64 {
	return float64(i) * b.LineHeight
}

// Height is the vertical space taken by all lines.
func (b Block) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

// Empty reports whether the block has no lines.
func (b Block) Empty() bool {
	return len(b.Lines) == 0
}
