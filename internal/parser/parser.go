package parser

import (
	"context"
	"io"
	"strings"

	"card_scraper/internal/models"

	"github.com/rotisserie/eris"
)

// RawCard is a Data Transfer Object (DTO) holding one card exactly as it was
// read from the dump, before the service maps it to a storage model.
type RawCard struct {
	Name       string
	ImageURL   *string
	DetailLink *string
	Sections   models.Sections
}

// Stats counts how each input line was handled. It is diagnostic only.
type Stats struct {
	Lines          int
	Dividers       int
	Records        int
	Discontinued   int
	PseudoSections int
	PseudoInline   int
	Sections       int
	Orphans        int
}

// CardParser defines the contract for turning a scrape dump into cards.
type CardParser interface {
	ParseRawCards(ctx context.Context, reader io.Reader) ([]RawCard, Stats, error)
}

// dumpParser is the concrete implementation for the text dump format.
type dumpParser struct {
	rules PseudoHeaderRules
}

// NewCardParser creates a parser using DefaultRules.
func NewCardParser() CardParser {
	return &dumpParser{rules: DefaultRules}
}

// NewCardParserWithRules creates a parser with a custom pseudo-header table.
func NewCardParserWithRules(rules PseudoHeaderRules) CardParser {
	return &dumpParser{rules: rules}
}

// ParseRawCards reads the whole dump and parses it. Only a read failure is
// reported; malformed content never is.
func (p *dumpParser) ParseRawCards(ctx context.Context, reader io.Reader) ([]RawCard, Stats, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, Stats{}, eris.Wrap(err, "parser: read dump")
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	cards, stats := parse(string(data), p.rules)
	return cards, stats, nil
}

// Parse converts a dump into cards in source order using DefaultRules.
func Parse(text string) []RawCard {
	cards, _ := parse(text, DefaultRules)
	return cards
}

// ParseWithStats is Parse plus per-category line counts.
func ParseWithStats(text string) ([]RawCard, Stats) {
	return parse(text, DefaultRules)
}

// state is the scratch space of a single parse.
type state struct {
	rules   PseudoHeaderRules
	cards   []RawCard
	card    *RawCard
	section *string
	buffer  []string
	stats   Stats
}

func parse(text string, rules PseudoHeaderRules) ([]RawCard, Stats) {
	s := &state{rules: rules}
	for _, raw := range splitLines(text) {
		s.stats.Lines++
		s.consume(Normalize(raw))
	}
	s.flushCard()
	return s.cards, s.stats
}

func (s *state) consume(line string) {
	stripped := strip(line)

	if IsDivider(stripped) {
		s.stats.Dividers++
		return
	}

	if strings.HasPrefix(stripped, RecordMarker) {
		s.marker(line, strip(strings.Replace(stripped, RecordMarker, "", 1)))
		return
	}

	if s.card == nil {
		s.stats.Orphans++
		return
	}

	switch {
	case strings.HasPrefix(stripped, ImagePrefix):
		v := afterColon(stripped)
		s.card.ImageURL = &v
	case strings.HasPrefix(stripped, DetailLinkPrefix):
		v := afterColon(stripped)
		s.card.DetailLink = &v
	case strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]"):
		s.flushSection()
		title := strip(strings.NewReplacer("[", "", "]", "").Replace(stripped))
		s.section = &title
		s.stats.Sections++
	case s.section != nil:
		s.buffer = append(s.buffer, line)
	default:
		s.stats.Orphans++
	}
}

func (s *state) marker(line, title string) {
	switch s.rules.Classify(title) {
	case InlineBody:
		s.stats.PseudoInline++
		s.buffer = append(s.buffer, line)
		return
	case SectionHeading:
		if s.card == nil {
			s.stats.Orphans++
			return
		}
		s.stats.PseudoSections++
		s.flushSection()
		s.section = &title
		return
	}

	s.flushCard()
	if title == "" {
		s.stats.Orphans++
		return
	}
	if IsDiscontinued(title) {
		s.stats.Discontinued++
		return
	}
	s.stats.Records++
	s.card = &RawCard{Name: title, Sections: models.NewSections()}
}

// flushSection commits the buffer to the current section. Repeated headings
// accumulate, separated by a line break.
func (s *state) flushSection() {
	defer func() { s.buffer = nil }()
	if s.card == nil || s.section == nil || len(s.buffer) == 0 {
		return
	}

	parts := make([]string, 0, len(s.buffer))
	for _, l := range s.buffer {
		if t := strip(l); t != "" {
			parts = append(parts, t)
		}
	}
	s.card.Sections.Append(*s.section, strings.Join(parts, "  "))
}

func (s *state) flushCard() {
	s.flushSection()
	if s.card != nil {
		s.cards = append(s.cards, *s.card)
	}
	s.card = nil
	s.section = nil
	s.buffer = nil
}

func afterColon(s string) string {
	_, v, _ := strings.Cut(s, ":")
	return strip(v)
}
