package fields

import (
	"regexp"
	"strings"
)

const months = `(?:जानेवारी|फेब्रुवारी|मार्च|एप्रिल|मे|जून|जुलै|ऑगस्ट|सप्टेंबर|ऑक्टोबर|नोव्हेंबर|डिसेंबर)`

var (
	dateRE       = regexp.MustCompile(`[0-9०-९]{1,2}\s+` + months + `\s*,?\s*[0-9०-९]{4}`)
	questionNoRE = regexp.MustCompile(`(?:प्रश्न क्रमांक|क्रमांक)\s*([0-9०-९]+)`)
	// Honorific-prefixed name spans. श्रीमती and सर्वश्री must precede श्री
	// in the alternation or the shorter form wins the match.
	participantRE = regexp.MustCompile(`(?:श्रीमती|सर्वश्री|श्री)\.?\s[^\n:,()]+`)

	askerCueRE    = regexp.MustCompile(`प्रश्न\s+(?:विचारला|विचारले|उपस्थित केला)`)
	answererCueRE = regexp.MustCompile(`उत्तर\s+(?:दिले|देताना)|निवेदन केले`)
)

// cueWindow is how far past a name the classifier looks for a verb cue.
const cueWindow = 60

// Participants holds honorific-named people grouped by their role cue.
type Participants struct {
	Askers    []string
	Answerers []string
	Members   []string
}

// All returns the union of the three role sets, askers and answerers first,
// without duplicates.
func (p Participants) All() []string {
	seen := make(map[string]bool)
	var all []string
	for _, group := range [][]string{p.Askers, p.Answerers, p.Members} {
		for _, name := range group {
			if !seen[name] {
				seen[name] = true
				all = append(all, name)
			}
		}
	}
	return all
}

// Fields is the deterministic extraction result for one debate span.
type Fields struct {
	Date            string
	QuestionNumbers []string
	Participants    Participants
}

// Extract pulls date, question numbers and participants from debate text.
func Extract(text string) Fields {
	f := Fields{
		Date:         dateRE.FindString(text),
		Participants: extractParticipants(text),
	}
	for _, m := range questionNoRE.FindAllStringSubmatch(text, -1) {
		f.QuestionNumbers = append(f.QuestionNumbers, m[1])
	}
	return f
}

func extractParticipants(text string) Participants {
	var p Participants
	seen := make(map[string]bool)

	for _, loc := range participantRE.FindAllStringIndex(text, -1) {
		span := text[loc[0]:loc[1]]

		// The span runs to the end of the line, so the agentive marker and
		// any verb cue sit inside it; the name stops at the marker.
		name := span
		if i := strings.Index(name, " यांनी"); i > 0 {
			name = name[:i]
		}
		name = Clean(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		after := text[loc[1]:]
		context := span + runeWindow(after, cueWindow)
		switch {
		case askerCueRE.MatchString(context):
			p.Askers = append(p.Askers, name)
		case answererCueRE.MatchString(context) || startsWithColon(after):
			p.Answerers = append(p.Answerers, name)
		default:
			p.Members = append(p.Members, name)
		}
	}
	return p
}

// startsWithColon reports whether the text immediately after a name opens a
// spoken-answer attribution ("श्री. ... : ...").
func startsWithColon(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, " "), ":")
}

func runeWindow(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// ValidateTopic guarantees a non-empty topic, substituting the placeholder
// for debates whose heading extraction yielded nothing.
func ValidateTopic(topic string) string {
	cleaned := Clean(topic)
	if cleaned == "" {
		return "Unknown Topic"
	}
	return cleaned
}

// DocumentName derives the document name from the topic when the source
// carries none.
func DocumentName(name, topic string) string {
	if cleaned := Clean(name); cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(topic) + "_Document"
}
