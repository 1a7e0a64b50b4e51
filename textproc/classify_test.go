package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classifyString(s string, carry rune) Counts {
	return Classify([]byte(s), len(s), carry)
}

func TestClassifyBasicCounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Counts
	}{
		{"empty", "", Counts{}},
		{"whitespace only", " \t\n\r ", Counts{}},
		{"two words", "hello world", Counts{Words: 2, VowelStart: 0, ConsonantEnd: 1}},
		{"vowel starts", "an apple a day", Counts{Words: 4, VowelStart: 3, ConsonantEnd: 2}},
		{"single word no trailing space", "axolotl", Counts{Words: 1, VowelStart: 1, ConsonantEnd: 1}},
		{"punctuation and separation", "one, (two) [three]—four!", Counts{Words: 4, VowelStart: 1, ConsonantEnd: 1}},
		{"numbers and underscores", "_foo 42bar", Counts{Words: 2, VowelStart: 0, ConsonantEnd: 1}},
		{"hyphen splits words", "well-known", Counts{Words: 2, VowelStart: 0, ConsonantEnd: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyString(tt.text, WhitespaceSentinel))
		})
	}
}

func TestClassifyMergeChars(t *testing.T) {
	// apostrophes join a word but cannot open one
	assert.Equal(t, Counts{Words: 1, VowelStart: 1, ConsonantEnd: 1},
		classifyString("isn't", WhitespaceSentinel))
	assert.Equal(t, Counts{Words: 2, VowelStart: 1, ConsonantEnd: 2},
		classifyString("'tis ok", WhitespaceSentinel))
}

func TestClassifyFoldsAccents(t *testing.T) {
	got := classifyString("água é boa", WhitespaceSentinel)
	assert.Equal(t, Counts{Words: 3, VowelStart: 2, ConsonantEnd: 0}, got)

	assert.Equal(t, 'a', Fold('á'))
	assert.Equal(t, 'e', Fold('Ê'))
	assert.Equal(t, 'c', Fold('ç'))
	assert.Equal(t, 'x', Fold('x'))
}

func TestClassifyCarryContinuesWord(t *testing.T) {
	// a carry inside a word suppresses counting the continuation as a new
	// word; only the originating chunk counted it
	got := classifyString("llo ", 'e')
	assert.Equal(t, Counts{}, got)

	// a whitespace carry starts fresh
	whole := classifyString("hello world", WhitespaceSentinel)
	first := classifyString("hello ", WhitespaceSentinel)
	second := classifyString("world", ' ')
	var sum Counts
	sum.Add(first)
	sum.Add(second)
	assert.Equal(t, whole, sum)
}

func TestClassifyTrailingWordClosedAtEnd(t *testing.T) {
	// end of input terminates the last word so the consonant ending counts
	got := classifyString("last", WhitespaceSentinel)
	assert.Equal(t, Counts{Words: 1, VowelStart: 0, ConsonantEnd: 1}, got)
}

func TestClassifyRespectsSize(t *testing.T) {
	data := []byte("alpha beta gamma")
	got := Classify(data, 6, WhitespaceSentinel) // only "alpha "
	assert.Equal(t, Counts{Words: 1, VowelStart: 1, ConsonantEnd: 0}, got)
}
