package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lnreader/internal/backup"
	"lnreader/internal/catalog"
	"lnreader/internal/migrate"
	"lnreader/pkg/logger"
	"lnreader/pkg/models"
	"lnreader/pkg/utils"
)

func main() {
	var (
		in        = flag.String("in", "", "1.x backup JSON file (required)")
		out       = flag.String("out", backup.MigratedFileName, "output path for the 2.x backup")
		plugins   = flag.String("plugins", utils.DefaultPluginsURL, "plugin repository URL or local JSON file")
		unmatched = flag.String("unmatched", "", "optional CSV report of entries that were not migrated")
		rulesPath = flag.String("rules", "", "optional YAML file extending the migration rules")
	)
	flag.Parse()
	logger.Init()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rules := migrate.DefaultRules()
	if *rulesPath != "" {
		r, err := migrate.LoadRules(*rulesPath)
		if err != nil {
			logger.Error.Fatalf("load rules: %v", err)
		}
		rules = r
	}

	records, err := readBackup(*in)
	if err != nil {
		logger.Error.Fatalf("read backup failed: %v", err)
	}

	raw, err := catalog.SourceFor(*plugins).FetchAll(ctx)
	if err != nil {
		logger.Error.Fatalf("load plugins failed: %v", err)
	}
	catalogue := catalog.Descriptors(raw)
	if len(catalogue) == 0 {
		logger.Error.Fatalf("no usable plugins in %s", *plugins)
	}

	result := rules.Migrate(records, catalogue)

	if err := writeFile(*out, func(f *os.File) error {
		return backup.WriteMigrated(f, result.MigratedNovels)
	}); err != nil {
		logger.Error.Fatalf("write %s failed: %v", *out, err)
	}

	if *unmatched != "" {
		if err := writeFile(*unmatched, func(f *os.File) error {
			return backup.WriteUnmatchedCSV(f, result.UnmatchedEntries)
		}); err != nil {
			logger.Error.Fatalf("write %s failed: %v", *unmatched, err)
		}
	}

	printSummary(result, *out)
}

func readBackup(path string) ([]models.LegacyNovel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return backup.ReadLegacy(f)
}

func writeFile(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printSummary(result models.MigrationResult, out string) {
	fmt.Printf("migrated %d novels to %s, %d unmatched\n",
		len(result.MigratedNovels), out, len(result.UnmatchedEntries))

	if len(result.RequiredPlugins) > 0 {
		fmt.Println("\nrequired plugins:")
		for _, p := range result.RequiredPlugins {
			lang := p.Lang
			if lang == "" {
				lang = "Unknown language"
			}
			fmt.Printf("  %-24s %-20s %s\n", p.Name, p.ID, lang)
		}
	}

	if len(result.UnmatchedEntries) > 0 {
		fmt.Println("\nnot migrated:")
		for _, e := range result.UnmatchedEntries {
			fmt.Printf("  %s (%s): %s\n", e.NovelName, e.SourceURL, e.Reason)
		}
	}
}
