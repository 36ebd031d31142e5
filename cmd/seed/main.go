package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/freshpredict/internal/calendar"
	"github.com/andresuchdata/freshpredict/internal/config"
	"github.com/andresuchdata/freshpredict/internal/domain"
	"github.com/andresuchdata/freshpredict/internal/drive"
	"github.com/andresuchdata/freshpredict/internal/repository"
	"github.com/andresuchdata/freshpredict/internal/repository/postgres"
	"github.com/andresuchdata/freshpredict/internal/salesgen"
	"github.com/andresuchdata/freshpredict/internal/storage"
	"github.com/andresuchdata/freshpredict/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "file",
		Usage:   "Sales history CSV",
		Value:   "./data/sales_history.csv",
		EnvVars: []string{"SALES_CSV_PATH"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Generate, load and publish sales history for the forecasting service",
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Write a synthetic sales history CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "First day (YYYY-MM-DD)", Value: "2025-01-01"},
					&cli.StringFlag{Name: "to", Usage: "Last day (YYYY-MM-DD)", Value: "2026-02-08"},
					&cli.Uint64Flag{Name: "seed", Usage: "Random seed", Value: 42},
					&cli.StringFlag{Name: "out", Usage: "Output CSV path", Value: "./data/sales_history.csv"},
				},
				Action: runGenerate,
			},
			{
				Name:   "load",
				Usage:  "Load a sales history CSV into Postgres",
				Flags:  []cli.Flag{newDBURLFlag(), newFileFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runLoad,
			},
			{
				Name:  "upload",
				Usage: "Upload a sales history CSV to the S3 bucket",
				Flags: []cli.Flag{
					newFileFlag(),
					&cli.StringFlag{Name: "key", Usage: "Object key (defaults to S3_SALES_OBJECT_KEY)"},
				},
				Action: runUpload,
			},
			{
				Name:  "fetch-drive",
				Usage: "Download the sales export from Google Drive as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Usage: "Drive folder path (defaults to DRIVE_FOLDER_PATH)"},
					&cli.StringFlag{Name: "name", Usage: "Export file name (defaults to DRIVE_SALES_FILE)"},
					&cli.StringFlag{Name: "out", Usage: "Output CSV path", Value: "./data/sales_history.csv"},
					&cli.BoolFlag{Name: "upload", Usage: "Also upload the CSV to the S3 bucket"},
				},
				Action: runFetchDrive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func runGenerate(c *cli.Context) error {
	from, err := domain.ParseDate(c.String("from"))
	if err != nil {
		return err
	}
	to, err := domain.ParseDate(c.String("to"))
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to, from)
	}

	cfg := config.Load()
	seed := c.Uint64("seed")
	gen := salesgen.New(calendar.New(cfg.Calendar), salesgen.DefaultProducts(), rand.New(rand.NewPCG(seed, seed)))
	rows := gen.Generate(from, to)

	var buf bytes.Buffer
	if err := salesgen.WriteCSV(&buf, rows); err != nil {
		return err
	}
	if err := writeFile(c.String("out"), buf.Bytes()); err != nil {
		return err
	}

	log.Info().
		Str("path", c.String("out")).
		Int("rows", len(rows)).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("sales history generated")
	return nil
}

func runLoad(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey{}).(*sql.DB)
	if !ok {
		return fmt.Errorf("database not initialised")
	}

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.String("file"), err)
	}
	defer file.Close()

	byID, err := repository.ParseSalesCSV(file)
	if err != nil {
		return err
	}

	repo := postgres.NewSalesRepository(postgres.Wrap(sqlx.NewDb(db, "pgx")))
	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}

	rows := salesRows(byID)
	start := time.Now()
	if err := repo.SaveSales(c.Context, rows); err != nil {
		return err
	}

	log.Info().
		Int("rows", len(rows)).
		Int("products", len(byID)).
		Dur("elapsed", time.Since(start)).
		Msg("sales history loaded into postgres")
	return nil
}

// salesRows attaches product names and categories known to the generator.
func salesRows(byID map[string][]domain.SalesRecord) []postgres.SalesRow {
	known := make(map[string]salesgen.Product)
	for _, p := range salesgen.DefaultProducts() {
		known[p.ID] = p
	}

	var rows []postgres.SalesRow
	for id, records := range byID {
		p := known[id]
		for _, r := range records {
			rows = append(rows, postgres.SalesRow{
				Date:        r.Date,
				ProductID:   id,
				ProductName: p.Name,
				Category:    string(p.Category),
				Quantity:    r.Quantity,
			})
		}
	}
	return rows
}

func runUpload(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.String("file"), err)
	}

	cfg := config.Load()
	key := c.String("key")
	if key == "" {
		key = cfg.Storage.SalesObjectKey
	}
	return upload(c.Context, cfg.Storage, key, data)
}

func upload(ctx context.Context, cfg config.StorageConfig, key string, data []byte) error {
	client, err := storage.NewS3Client(cfg)
	if err != nil {
		return err
	}
	if err := client.UploadObject(ctx, key, data); err != nil {
		return err
	}

	objects, err := client.ListObjects(ctx, key)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if obj.Key == key {
			log.Info().Str("bucket", cfg.Bucket).Str("key", key).Int64("bytes", obj.Size).Msg("sales history uploaded")
			return nil
		}
	}
	return fmt.Errorf("uploaded object %s not listed in bucket %s", key, cfg.Bucket)
}

func runFetchDrive(c *cli.Context) error {
	cfg := config.Load()
	if cfg.Drive.CredentialsFile == "" {
		return fmt.Errorf("GOOGLE_CREDENTIALS_FILE must be set")
	}

	folder := c.String("folder")
	if folder == "" {
		folder = cfg.Drive.FolderPath
	}
	name := c.String("name")
	if name == "" {
		name = cfg.Drive.FileName
	}

	svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsFile)
	if err != nil {
		return err
	}

	data, source, err := drive.NewSalesExportFetcher(svc).FetchCSV(c.Context, folder, name)
	if err != nil {
		return err
	}

	// Reject exports the server could not read.
	if _, err := repository.ParseSalesCSV(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("drive export %s: %w", source, err)
	}

	if err := writeFile(c.String("out"), data); err != nil {
		return err
	}
	log.Info().Str("source", source).Str("path", c.String("out")).Msg("sales export saved")

	if c.Bool("upload") {
		return upload(c.Context, cfg.Storage, cfg.Storage.SalesObjectKey, data)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
