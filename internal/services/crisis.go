package services

import (
	"strings"
	"unicode"
)

// selfHarmPhrases are matched against cleaned chat messages.
var selfHarmPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish I was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

// canonicalSelfHarmPhrases holds selfHarmPhrases run through CleanText so
// both sides of the comparison collapse the same way.
var canonicalSelfHarmPhrases = func() []string {
	out := make([]string, len(selfHarmPhrases))
	for i, p := range selfHarmPhrases {
		out[i] = CleanText(p)
	}
	return out
}()

var obfuscationReplacer = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
	"а", "a", // Cyrillic
	"е", "e",
	"і", "i",
	"о", "o",
	"р", "p",
)

// CleanText normalizes text for phrase matching: lowercase, common
// character substitutions undone, non-letters turned into single spaces
// and repeated letters collapsed ("diiie" -> "die").
func CleanText(text string) string {
	cleaned := obfuscationReplacer.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	lastWasLetter := false
	pendingSpace := false
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			pendingSpace = b.Len() > 0
			lastWasLetter = false
			continue
		}
		if pendingSpace {
			b.WriteRune(' ')
			pendingSpace = false
		}
		if lastWasLetter && r == last {
			continue
		}
		b.WriteRune(r)
		last = r
		lastWasLetter = true
	}
	return b.String()
}

// DetectSelfHarm reports whether message contains self-harm language and
// which phrases matched. Single words must match a whole word.
func DetectSelfHarm(message string) (bool, []string) {
	cleaned := CleanText(message)
	if cleaned == "" {
		return false, nil
	}
	words := strings.Fields(cleaned)
	padded := " " + cleaned + " "

	var matched []string
	for i, phrase := range canonicalSelfHarmPhrases {
		if strings.Contains(phrase, " ") {
			if strings.Contains(padded, " "+phrase+" ") {
				matched = append(matched, selfHarmPhrases[i])
			}
			continue
		}
		for _, w := range words {
			if w == phrase {
				matched = append(matched, selfHarmPhrases[i])
				break
			}
		}
	}
	return len(matched) > 0, matched
}
