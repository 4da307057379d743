package service

import (
	"context"

	"card_scraper/internal/models"
	"card_scraper/internal/parser"
	"card_scraper/internal/repository"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CardService defines the business logic contract.
type CardService interface {
	LoadCards(ctx context.Context, path string) ([]models.Card, parser.Stats, error)
	LoadAll(ctx context.Context, paths []string) ([]models.Card, error)
}

// cardService depends on the DumpRepository (reading and decoding dump
// files) and the CardParser (turning dump text into raw cards).
type cardService struct {
	Repo   repository.DumpRepository
	Parser parser.CardParser
}

// NewCardService creates a new service instance with both dependencies.
func NewCardService(repo repository.DumpRepository, p parser.CardParser) CardService {
	return &cardService{
		Repo:   repo,
		Parser: p,
	}
}

// LoadCards orchestrates the loading, parsing and transformation of one dump.
func (s *cardService) LoadCards(ctx context.Context, path string) ([]models.Card, parser.Stats, error) {
	// 1. Read and decode the dump (Repository responsibility)
	reader, err := s.Repo.Fetch(ctx, path)
	if err != nil {
		return nil, parser.Stats{}, eris.Wrapf(err, "service: load %s", path)
	}

	// 2. Parse raw cards (Parser responsibility)
	rawCards, stats, err := s.Parser.ParseRawCards(ctx, reader)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "service: parse %s", path)
	}

	// 3. Transform into storage models
	cards := make([]models.Card, 0, len(rawCards))
	for _, raw := range rawCards {
		cards = append(cards, ToModel(raw))
	}

	zap.L().Info("dump parsed",
		zap.String("path", path),
		zap.Int("lines", stats.Lines),
		zap.Int("cards", len(cards)),
		zap.Int("discontinued", stats.Discontinued),
		zap.Int("pseudo_sections", stats.PseudoSections),
		zap.Int("pseudo_inline", stats.PseudoInline),
		zap.Int("dividers", stats.Dividers),
		zap.Int("orphans", stats.Orphans),
	)
	return cards, stats, nil
}

// LoadAll parses independent dumps concurrently and returns their cards in
// the order of paths. The first failure cancels the remaining loads.
func (s *cardService) LoadAll(ctx context.Context, paths []string) ([]models.Card, error) {
	results := make([][]models.Card, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			cards, _, err := s.LoadCards(gCtx, path)
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Card
	for _, cards := range results {
		all = append(all, cards...)
	}
	return all, nil
}

// ToModel maps a parsed card to its storage row.
func ToModel(raw parser.RawCard) models.Card {
	sections := raw.Sections
	if sections.Len() == 0 {
		sections = models.NewSections()
	}
	return models.Card{
		Name:       raw.Name,
		ImageURL:   raw.ImageURL,
		DetailLink: raw.DetailLink,
		Sections:   sections,
	}
}
