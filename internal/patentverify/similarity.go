package patentverify

import "strings"

// Ratio computes the Ratcliff/Obershelp similarity of two titles in [0,1]:
// twice the number of characters in the longest common contiguous blocks,
// applied recursively to the unmatched remainders, divided by the combined
// length. Both inputs are lowercased and trimmed first, so case and
// surrounding whitespace never affect the score.
func Ratio(a, b string) float64 {
	ar := []rune(strings.ToLower(strings.TrimSpace(a)))
	br := []rune(strings.ToLower(strings.TrimSpace(b)))
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(ar, br)) / float64(total)
}

func matchingChars(a, b []rune) int {
	size, posA, posB := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:posA], b[:posB]) +
		matchingChars(a[posA+size:], b[posB+size:])
}

// longestCommonBlock finds the longest common contiguous run of runes,
// preferring the earliest occurrence in a on ties.
func longestCommonBlock(a, b []rune) (size, posA, posB int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] holds the run length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					posA = i - size
					posB = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return size, posA, posB
}

// ContainsCJK reports whether the text carries Chinese, Japanese kana or
// Korean Hangul characters. A low similarity score on such a title is more
// likely a language mismatch than a content mismatch, so the pipeline
// annotates the record instead of penalizing it.
func ContainsCJK(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
			return true
		case r >= 0x3040 && r <= 0x30FF: // hiragana + katakana
			return true
		case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
			return true
		}
	}
	return false
}
