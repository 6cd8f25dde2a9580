// Package bilingual splits an English/Indonesian answer into its two halves.
package bilingual

import "strings"

// ParagraphSeparator separates paragraphs in an answer.
const ParagraphSeparator = "\n\n"

// Markers the answering service uses to tag language sections.
const (
	EnglishMarker       = "**English:**"
	IndonesianMarker    = "**Indonesian:**"
	IndonesianBracketed = "[Indonesian]"
)

// signalKeywords trigger keyword sniffing when no explicit marker is present.
var signalKeywords = []string{"Untuk", "untuk"}

// indonesianKeywords classify a single paragraph as Indonesian.
var indonesianKeywords = []string{"Untuk", "untuk", "dan", "atau"}

// Segmented is an answer split into a primary (English) and an optional
// secondary (Indonesian) portion. Secondary is nil when no split was detected.
type Segmented struct {
	Primary   string
	Secondary *string
}

// IsBilingual reports whether a secondary portion was produced.
func (s Segmented) IsBilingual() bool {
	return s.Secondary != nil
}

// SecondaryText returns the secondary portion, or "" when there is none.
func (s Segmented) SecondaryText() string {
	if s.Secondary == nil {
		return ""
	}
	return *s.Secondary
}

// Segment decides whether answer carries both an English and an Indonesian
// part and splits it. Rules are tried in order and the first match wins:
// the **Indonesian:** marker, the [Indonesian] marker, then keyword sniffing
// over paragraphs. Anything else is returned whole with a nil Secondary.
func Segment(answer string) Segmented {
	switch {
	case strings.Contains(answer, IndonesianMarker):
		before, after, _ := strings.Cut(answer, IndonesianMarker)
		before = strings.Replace(before, EnglishMarker, "", 1)
		return split(strings.TrimSpace(before), strings.TrimSpace(after))

	case strings.Contains(answer, IndonesianBracketed):
		before, after, _ := strings.Cut(answer, IndonesianBracketed)
		return split(strings.TrimSpace(before), strings.TrimSpace(after))
	}

	paragraphs := strings.Split(answer, ParagraphSeparator)
	if len(paragraphs) < 2 || !containsAny(answer, signalKeywords) {
		return Segmented{Primary: answer}
	}
	return sniff(paragraphs)
}

// sniff assigns paragraphs to primary until the first Indonesian-looking
// paragraph; that paragraph and everything after it go to secondary.
func sniff(paragraphs []string) Segmented {
	var primary, secondary []string
	inSecondary := false
	for _, p := range paragraphs {
		if !inSecondary && containsAny(p, indonesianKeywords) {
			inSecondary = true
		}
		if inSecondary {
			secondary = append(secondary, p)
		} else {
			primary = append(primary, p)
		}
	}
	return split(
		strings.Join(primary, ParagraphSeparator),
		strings.Join(secondary, ParagraphSeparator),
	)
}

func split(primary, secondary string) Segmented {
	return Segmented{Primary: primary, Secondary: &secondary}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
