// Package textproc counts words in raw text. A word starts with an
// alphanumeric or underscore character; apostrophes merge words ("isn't" is
// one word); whitespace, separation and punctuation characters end a word.
// Accented vowels are folded onto their base vowel before classification so
// that "água" counts as starting with a vowel.
package textproc

import "unicode/utf8"

// Counts holds the statistics for one piece of text.
type Counts struct {
	Words        int
	VowelStart   int
	ConsonantEnd int
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Words += other.Words
	c.VowelStart += other.VowelStart
	c.ConsonantEnd += other.ConsonantEnd
}

// WhitespaceSentinel is the carry value for text with no preceding chunk.
const WhitespaceSentinel = ' '

func isAlpha(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// IsVowel reports whether r is a vowel (after folding).
func IsVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// IsConsonant reports whether r is an alphabetic non-vowel.
func IsConsonant(r rune) bool {
	return isAlpha(r) && !IsVowel(r)
}

// IsWhitespace reports whether r is a word-separating whitespace character.
func IsWhitespace(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' || r == ' '
}

func isSeparation(r rune) bool {
	switch r {
	case '"', '(', ')', '-', '[', ']', '«', '»', '–', '“', '”':
		return true
	}
	return false
}

func isPunctuation(r rune) bool {
	switch r {
	case '!', ',', '.', ':', ';', '?', '—', '…':
		return true
	}
	return false
}

func isMergeChar(r rune) bool {
	return r == '\'' || r == '‘' || r == '’'
}

func isNumeric(r rune) bool {
	return r >= '0' && r <= '9'
}

// wordStart: characters that can open a word.
func isWordStart(r rune) bool {
	return isAlpha(r) || isNumeric(r) || r == '_'
}

// wordPart: characters that keep a word going once it is open.
func isWordPart(r rune) bool {
	return isWordStart(r) || isMergeChar(r)
}

// Fold maps accented latin vowels (and cedilla) onto their base letter.
func Fold(r rune) rune {
	switch {
	case (r >= 0xC0 && r <= 0xC4) || (r >= 0xE0 && r <= 0xE4):
		return 'a'
	case (r >= 0xC8 && r <= 0xCB) || (r >= 0xE8 && r <= 0xEB):
		return 'e'
	case (r >= 0xCC && r <= 0xCF) || (r >= 0xEC && r <= 0xEF):
		return 'i'
	case (r >= 0xD2 && r <= 0xD6) || (r >= 0xF2 && r <= 0xF6):
		return 'o'
	case (r >= 0xD9 && r <= 0xDC) || (r >= 0xF9 && r <= 0xFC):
		return 'u'
	case r == 0xC7 || r == 0xE7:
		return 'c'
	}
	return r
}

// Classify counts words in data[:size]. carry is the last character of the
// preceding chunk of the same stream (WhitespaceSentinel when there is none);
// it tells the classifier whether the first character continues a word that
// opened earlier. The end of the data closes any trailing word, so calling
// Classify once over a whole file gives the file's exact statistics.
func Classify(data []byte, size int, carry rune) Counts {
	var c Counts
	if size <= 0 {
		return c
	}
	if size > len(data) {
		size = len(data)
	}

	inWord := isWordPart(carry)
	prev := carry

	for i := 0; i < size; {
		r, w := utf8.DecodeRune(data[i:size])
		i += w
		r = Fold(r)

		if !inWord && isWordStart(r) {
			if IsVowel(r) {
				c.VowelStart++
			}
			c.Words++
			inWord = true
			prev = r
		} else if inWord {
			if isWordPart(r) {
				prev = r
			} else if IsWhitespace(r) || isSeparation(r) || isPunctuation(r) {
				if IsConsonant(prev) {
					c.ConsonantEnd++
				}
				inWord = false
			}
			// anything else is ignored without ending the word
		}
	}

	// end of data terminates a trailing word
	if inWord && IsConsonant(prev) {
		c.ConsonantEnd++
	}
	return c
}
