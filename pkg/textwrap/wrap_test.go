package textwrap

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{"Empty", "", 28, nil},
		{"Blank", "   \t ", 28, nil},
		{"SingleWord", "Ada", 28, []string{"Ada"}},
		{"FitsOnOneLine", "Ada Lovelace", 28, []string{"Ada Lovelace"}},
		{
			"OverflowTokenStaysAndCarries",
			"Senior Vice President of Global Delivery", 28,
			[]string{"Senior Vice President of Global", "Global Delivery"},
		},
		{"ExactWidthDoesNotCommit", "aaaa bbbb", 9, []string{"aaaa bbbb"}},
		{"CollapsesInnerWhitespace", "Head   of\tSales", 28, []string{"Head of Sales"}},
		{
			"LongFirstWord",
			"Supercalifragilistic x", 10,
			[]string{"Supercalifragilistic", "Supercalifragilistic x"},
		},
		{
			"SeveralCommits",
			"one two three four five six", 7,
			[]string{"one two three", "three four", "four five", "five six"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.maxChars))
		})
	}
}

func TestBlock(t *testing.T) {
	b := NewBlock("Senior Vice President of Global Delivery", 28, 14)
	assert.Len(t, b.Lines, 2)
	assert.Equal(t, 0.0, b.Offset(0))
	assert.Equal(t, 14.0, b.Offset(1))
	assert.Equal(t, 28.0, b.Height())
	assert.False(t, b.Empty())

	assert.True(t, NewBlock("", 28, 14).Empty())
	assert.Equal(t, 0.0, NewBlock("", 28, 14).Height())
}

func TestWrapProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,12}`), 1, 20).Draw(t, "words")
		maxChars := rapid.IntRange(1, 40).Draw(t, "maxChars")
		lines := Wrap(strings.Join(words, " "), maxChars)

		if len(lines) == 0 {
			t.Fatalf("non-empty input produced no lines")
		}
		last := lines[len(lines)-1]
		if !strings.HasSuffix(last, words[len(words)-1]) {
			t.Fatalf("last line %q does not end with final word %q", last, words[len(words)-1])
		}
		for i, line := range lines {
			tokens := strings.Fields(line)
			if i < len(lines)-1 {
				// the committed token reappears at the start of the next line
				next := strings.Fields(lines[i+1])
				if tokens[len(tokens)-1] != next[0] {
					t.Fatalf("line %d ends with %q but line %d starts with %q", i, tokens[len(tokens)-1], i+1, next[0])
				}
			}
			if len(tokens) > 1 {
				prefix := strings.Join(tokens[:len(tokens)-1], " ")
				if runewidth.StringWidth(prefix) > maxChars && len(tokens) > 2 {
					t.Fatalf("line %q exceeded %d before its final token", line, maxChars)
				}
			}
		}
	})
}
