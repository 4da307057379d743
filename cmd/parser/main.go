package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"card_scraper/internal/config"
	"card_scraper/internal/models"
	"card_scraper/internal/parser"
	"card_scraper/internal/repository"
	"card_scraper/internal/service"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "parser [dump files...]",
	Short: "Parse card scrape dumps and store them in PostgreSQL",
	Long: "Reads the text dumps written by the card scraper, turns them into card records " +
		"and inserts the whole batch in one transaction. Without arguments the dump_files " +
		"from config.yaml are used.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load configuration
		cfg, err := config.Init()
		if err != nil {
			return err
		}
		if _, err := config.InitLogger(cfg.Log); err != nil {
			return err
		}
		defer zap.L().Sync()

		paths := args
		if len(paths) == 0 {
			paths = cfg.DumpFiles
		}

		svc := service.NewCardService(repository.NewDumpRepository(), parser.NewCardParser())
		return run(cmd.Context(), svc, paths, dryRun, cmd.OutOrStdout(), func(ctx context.Context) (repository.CardRepository, error) {
			return openRepository(ctx, cfg)
		})
	},
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print parsed cards as JSON instead of saving them")
}

// --- Main Application Logic ---
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zap.L().Error("parser failed", zap.Error(err))
		os.Exit(1)
	}
}

type repoOpener func(ctx context.Context) (repository.CardRepository, error)

func run(ctx context.Context, svc service.CardService, paths []string, dryRun bool, out io.Writer, open repoOpener) error {
	if len(paths) == 0 {
		return eris.New("no dump files given; pass paths or set dump_files in config.yaml")
	}

	// 2. Parse every dump
	cards, err := svc.LoadAll(ctx, paths)
	if err != nil {
		return err
	}
	zap.L().Info("parsing complete", zap.Int("cards", len(cards)), zap.Strings("dumps", paths))

	if len(cards) == 0 {
		zap.L().Warn("no cards to save; nothing written")
		return nil
	}

	if dryRun {
		return writeJSON(out, cards)
	}

	// 3. Database connection and migration
	repo, err := open(ctx)
	if err != nil {
		return err
	}

	// 4. Save the batch
	saved, err := repo.SaveCards(ctx, cards)
	if err != nil {
		return eris.Wrap(err, "save cards")
	}

	// 5. Final Output
	total, err := repo.CountCards(ctx)
	if err != nil {
		zap.L().Warn("could not count stored cards", zap.Error(err))
	}
	zap.L().Info("cards saved", zap.Int("inserted", saved), zap.Int("total", total))
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.CardRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "connect to %s@%s/%s", cfg.DB.User, cfg.DB.Host, cfg.DB.Name)
	}
	zap.L().Info("connected to PostgreSQL", zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.Name))

	repo := repository.NewPostgresCardRepository(db)
	if err := repo.Init(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func writeJSON(out io.Writer, cards []models.Card) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(cards)
}
