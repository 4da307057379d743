package repository

import (
	"context"
	"errors"

	"card_scraper/internal/models"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCardNotFound = eris.New("card not found")

// CardRepository defines the interface for persisting parsed cards.
type CardRepository interface {
	SaveCards(ctx context.Context, cards []models.Card) (int, error)
	CountCards(ctx context.Context) (int, error)
	GetAllCards(ctx context.Context) ([]models.Card, error)
	GetCard(ctx context.Context, id uint) (*models.Card, error)
	// Init method for GORM AutoMigrate
	Init(ctx context.Context) error
}

// PostgresCardRepository implements CardRepository for PostgreSQL using GORM.
type PostgresCardRepository struct {
	db *gorm.DB
}

// NewPostgresCardRepository creates a new instance.
func NewPostgresCardRepository(db *gorm.DB) *PostgresCardRepository {
	return &PostgresCardRepository{
		db: db,
	}
}

// Init handles GORM's automatic table creation/migration.
func (r *PostgresCardRepository) Init(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Card{}); err != nil {
		return eris.Wrap(err, "repository: auto-migrate cards")
	}
	return nil
}

// SaveCards inserts all cards in a single transaction. Any failing row rolls
// back the whole batch.
func (r *PostgresCardRepository) SaveCards(ctx context.Context, cards []models.Card) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}

	saved := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range cards {
			if err := tx.Create(&cards[i]).Error; err != nil {
				return eris.Wrapf(err, "repository: insert card %q", cards[i].Name)
			}
			saved++
		}
		return nil
	})
	if err != nil {
		zap.L().Error("card batch rolled back",
			zap.Int("batch", len(cards)),
			zap.Int("inserted_before_failure", saved),
			zap.Error(err),
		)
		return 0, err
	}
	return saved, nil
}

// CountCards returns the total number of cards in the table.
func (r *PostgresCardRepository) CountCards(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Card{}).Count(&count)
	if result.Error != nil {
		return 0, eris.Wrap(result.Error, "repository: count cards")
	}
	return int(count), nil
}

func (r *PostgresCardRepository) GetAllCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	result := r.db.WithContext(ctx).Order("id").Find(&cards)
	if result.Error != nil {
		return nil, eris.Wrap(result.Error, "repository: list cards")
	}
	return cards, nil
}

func (r *PostgresCardRepository) GetCard(ctx context.Context, id uint) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "repository: get card %d", id)
	}
	return &card, nil
}
