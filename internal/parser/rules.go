package parser

import "strings"

// Line prefixes and tokens of the scrape dump format.
const (
	RecordMarker      = "■"
	DiscontinuedMark  = "(단종)"
	ImagePrefix       = "이미지:"
	DetailLinkPrefix  = "상세링크:"
	dividerToken      = "-----"
	bannerPrefix      = "=="
	companyBannerMark = "[[ 카드사"
)

// HeaderKind is the outcome of classifying a marker title.
type HeaderKind int

const (
	// NewRecord starts a new card.
	NewRecord HeaderKind = iota
	// SectionHeading opens a section inside the current card.
	SectionHeading
	// InlineBody is fine print that belongs to the current section body.
	InlineBody
)

func (k HeaderKind) String() string {
	switch k {
	case SectionHeading:
		return "section"
	case InlineBody:
		return "inline"
	default:
		return "record"
	}
}

// PseudoHeaderRules decides whether a marker line names a card or is
// disclaimer text that merely shares the marker glyph.
type PseudoHeaderRules struct {
	// Keywords mark a title as fine print rather than a card name.
	Keywords []string
	// Punctuation marks fine print as an inline fragment instead of a heading.
	Punctuation []string
}

// DefaultRules is the rule table for the card-gorilla dump.
var DefaultRules = PseudoHeaderRules{
	Keywords: []string{
		"즉시결제", "유의사항", "확인하세요", "안내사항", "참고사항",
		"서비스 적용 기준", "청구금액", "수수료", "산출방법",
		"이용시", "전신환", "적립 서비스", "할인 서비스",
		"방법", "계획소비", "적립 받는", "혜택", "실적",
	},
	Punctuation: []string{":", "+", "×", "~", "="},
}

// Classify returns how a marker title must be treated.
func (r PseudoHeaderRules) Classify(title string) HeaderKind {
	if !containsAny(title, r.Keywords) {
		return NewRecord
	}
	if containsAny(title, r.Punctuation) {
		return InlineBody
	}
	return SectionHeading
}

// IsDivider reports whether a trimmed line is layout noise.
func IsDivider(stripped string) bool {
	return strings.Contains(stripped, dividerToken) ||
		strings.HasPrefix(stripped, bannerPrefix) ||
		strings.HasPrefix(stripped, companyBannerMark)
}

// IsDiscontinued reports whether a card title carries the discontinued mark.
func IsDiscontinued(title string) bool {
	return strings.Contains(title, DiscontinuedMark)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
