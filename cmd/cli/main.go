package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taxpj/backend/internal/config"
	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/export"
	"github.com/taxpj/backend/internal/ledger"
	"github.com/taxpj/backend/internal/logger"
	"github.com/taxpj/backend/internal/notionsync"
	"github.com/taxpj/backend/internal/pipeline"
	"github.com/taxpj/backend/internal/profiles"
	"github.com/taxpj/backend/internal/tax"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		runImport(log)
	case "profiles":
		runProfiles(log)
	case "notion-sync":
		runNotionSync(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Apuração de impostos sobre aplicações financeiras - Lucro Presumido")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  import       Parse statements and print the monthly tax report")
	fmt.Println("  profiles     List, add or remove configuration profiles")
	fmt.Println("  notion-sync  Mirror monthly summaries into a Notion database")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger, path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	return cfg
}

func openProfileStore(cfg config.Config) *profiles.Store {
	if cfg.RedisAddr != "" {
		return profiles.NewStore(profiles.NewRedisKV(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})))
	}
	return profiles.NewStore(profiles.NewFileKV(cfg.ProfileStorePath))
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	profileID := fs.String("profile", "", "configuration profile ID")
	csvOut := fs.String("csv", "", "write the accounting export to this file")
	showLedger := fs.Bool("ledger", false, "print the double-entry projection")
	fs.Parse(os.Args[2:])

	files := fs.Args()
	if *profileID == "" || len(files) == 0 {
		log.Fatal().Msg("Usage: cli import -profile ID [-csv FILE] [-ledger] FILE...")
	}

	cfg := loadConfig(log, *configPath)
	store := openProfileStore(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	profile, ok := store.Find(ctx, *profileID)
	if !ok {
		log.Fatal().Str("profile_id", *profileID).Msg("profile not found")
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg(domain.ErrFileRead.Error())
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(path), Data: data})
	}

	model := cfg.GeminiModel
	if model == "" {
		model = pipeline.DefaultModelName
	}
	importer := pipeline.NewImporter(pipeline.NewGeminiParser(model, cfg.GeminiAPIKey))

	txs, err := importer.ImportBatch(ctx, docs, profile)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	groups := tax.GroupByMonth(txs)
	printMonthlyReport(groups)

	if *showLedger {
		printLedger(ctx, txs, store)
	}

	if *csvOut != "" {
		if err := os.WriteFile(*csvOut, []byte(export.Dominio(txs)), 0o644); err != nil {
			log.Fatal().Err(err).Msg("failed to write export file")
		}
		fmt.Printf("\nExport gravado em %s\n", *csvOut)
	}
}

func printMonthlyReport(groups []domain.MonthlyGroup) {
	for _, g := range groups {
		fmt.Printf("\n%s (%s)\n", g.Label, g.MonthYear)
		fmt.Printf("  Lançamentos:      %d\n", len(g.Transactions))
		fmt.Printf("  Aplicado:         %.2f\n", g.Stats.TotalInvested)
		fmt.Printf("  Rendimento bruto: %.2f\n", g.Stats.TotalYield)
		fmt.Printf("  IRRF retido:      %.2f\n", g.Stats.TotalIRRF)
		fmt.Printf("  IRPJ a pagar:     %.2f\n", g.Stats.TotalIRPJ)
		fmt.Printf("  CSLL:             %.2f\n", g.Stats.TotalCSLL)
		fmt.Printf("  DARF:             %.2f\n", g.Stats.FinalTaxBalance)
	}

	total := tax.GlobalStats(groups)
	fmt.Printf("\nTotal do período: rendimento %.2f, IRRF %.2f, DARF %.2f\n",
		total.TotalYield, total.TotalIRRF, total.FinalTaxBalance)
}

func printLedger(ctx context.Context, txs []domain.Transaction, store *profiles.Store) {
	entries := ledger.ProjectAll(txs, func(id string) (domain.ConfigProfile, bool) {
		return store.Find(ctx, id)
	})

	fmt.Println("\nLançamentos contábeis:")
	for _, e := range entries {
		fmt.Printf("  %s  D:%-10s C:%-10s %10.2f  %s\n",
			e.Date, e.Debit, e.Credit, e.Amount, e.History)
	}
}

func runProfiles(log zerolog.Logger) {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	add := fs.Bool("add", false, "add a profile")
	remove := fs.String("remove", "", "remove the profile with this ID")
	name := fs.String("name", "", "profile name (with -add)")
	bankCode := fs.String("bank-code", "", "bank ledger account (with -add)")
	assetCode := fs.String("asset-code", "", "investment asset account (with -add)")
	liabilityCode := fs.String("liability-code", "", "tax liability account (with -add)")
	layout := fs.String("layout", "", "statement layout tag (with -add)")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(log, *configPath)
	store := openProfileStore(cfg)

	ctx := logger.WithContext(context.Background(), log)

	switch {
	case *add:
		saved, err := store.Save(ctx, domain.ConfigProfile{
			Name:          *name,
			BankCode:      *bankCode,
			AssetCode:     *assetCode,
			LiabilityCode: *liabilityCode,
			LayoutType:    domain.LayoutType(*layout),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to save profile")
		}
		fmt.Printf("Perfil criado: %s (%s)\n", saved.Name, saved.ID)

	case *remove != "":
		if err := store.Delete(ctx, *remove); err != nil {
			log.Fatal().Err(err).Msg("failed to remove profile")
		}
		fmt.Printf("Perfil removido: %s\n", *remove)

	default:
		list := store.List(ctx)
		if len(list) == 0 {
			fmt.Println("Nenhum perfil configurado.")
			return
		}
		for _, p := range list {
			fmt.Printf("%s  %-30s %s  banco:%s ativo:%s passivo:%s\n",
				p.ID, p.Name, p.LayoutType, p.BankCode, p.AssetCode, p.LiabilityCode)
		}
	}
}

func runNotionSync(log zerolog.Logger) {
	fs := flag.NewFlagSet("notion-sync", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	profileID := fs.String("profile", "", "configuration profile ID")
	dryRun := fs.Bool("dry-run", false, "log actions without touching Notion")
	fs.Parse(os.Args[2:])

	files := fs.Args()
	if *profileID == "" || len(files) == 0 {
		log.Fatal().Msg("Usage: cli notion-sync -profile ID [-dry-run] FILE...")
	}

	cfg := loadConfig(log, *configPath)
	if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
		log.Fatal().Msg("notion_token and notion_database_id must be configured")
	}
	store := openProfileStore(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	profile, ok := store.Find(ctx, *profileID)
	if !ok {
		log.Fatal().Str("profile_id", *profileID).Msg("profile not found")
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg(domain.ErrFileRead.Error())
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(path), Data: data})
	}

	model := cfg.GeminiModel
	if model == "" {
		model = pipeline.DefaultModelName
	}
	importer := pipeline.NewImporter(pipeline.NewGeminiParser(model, cfg.GeminiAPIKey))

	txs, err := importer.ImportBatch(ctx, docs, profile)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	groups := tax.GroupByMonth(txs)
	client := notionsync.NewNotionClient(cfg.NotionToken)
	if err := notionsync.SyncMonthlySummaries(ctx, client, cfg.NotionDatabaseID, groups, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}

	fmt.Printf("Sincronizados %d meses com o Notion.\n", len(groups))
}
