package text

import (
	"regexp"
	"strings"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SplitSentences breaks text on sentence terminators (. ! ?). A trailing
// fragment without a terminator is kept as its own sentence.
func SplitSentences(s string) []string {
	matches := sentenceRe.FindAllStringIndex(s, -1)
	var out []string
	last := 0
	for _, m := range matches {
		if frag := strings.TrimSpace(s[m[0]:m[1]]); frag != "" {
			out = append(out, frag)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(s[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Window packs sentences into chunks of at most chunkSize characters.
// Adjacent chunks repeat the trailing sentences of the previous chunk until at
// least overlap characters are shared, so a retrieved chunk keeps enough of
// its neighbourhood to stand alone. A single sentence longer than chunkSize is
// hard-cut. Text that fits in one window yields exactly one chunk with no
// overlap applied.
func Window(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	// Hard-cut oversize sentences so every unit fits a window.
	var units []string
	for _, s := range sentences {
		for len(s) > chunkSize {
			units = append(units, s[:chunkSize])
			s = s[chunkSize:]
		}
		if s != "" {
			units = append(units, s)
		}
	}

	var chunks []string
	i := 0
	for i < len(units) {
		size := 0
		j := i
		for j < len(units) {
			add := len(units[j])
			if size > 0 {
				add++ // joining space
			}
			if size+add > chunkSize {
				break
			}
			size += add
			j++
		}
		if j == i {
			j = i + 1
		}
		chunks = append(chunks, strings.Join(units[i:j], " "))
		if j >= len(units) {
			break
		}

		// Step back over trailing sentences until the shared region covers the
		// configured overlap. The window must still advance past i.
		k := j
		shared := 0
		for k > i+1 && shared < overlap {
			shared += len(units[k-1]) + 1
			k--
		}
		i = k
	}
	return chunks
}
