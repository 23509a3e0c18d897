package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/felixgeelhaar/codelab/internal/config"
	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/exercise"
	"github.com/felixgeelhaar/codelab/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	listDifficulty string
	importDB       string
	importUse      bool
)

func init() {
	exercisesCmd := &cobra.Command{
		Use:     "exercises",
		Aliases: []string{"exercise"},
		Short:   "Inspect and import exercises",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exercises from the configured catalog",
		RunE:  runExercisesList,
	}
	listCmd.Flags().StringVar(&listDifficulty, "difficulty", "", "filter by difficulty")
	exercisesCmd.AddCommand(listCmd)

	importCmd := &cobra.Command{
		Use:   "import PACK_DIR",
		Short: "Import a YAML exercise pack into the SQLite catalog",
		Long: `Import reads PACK_DIR/pack.yaml and the exercise files it lists, then
replaces the contents of the SQLite catalog with them in pack order.`,
		Args: cobra.ExactArgs(1),
		RunE: runExercisesImport,
	}
	importCmd.Flags().StringVar(&importDB, "db", "", "catalog database (default <home>/exercises/catalog.db)")
	importCmd.Flags().BoolVar(&importUse, "use", false, "switch config.yaml to the sqlite catalog afterwards")
	exercisesCmd.AddCommand(importCmd)

	rootCmd.AddCommand(exercisesCmd)
}

func runExercisesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, closeSrc, err := exercise.OpenSource(cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeSrc()

	catalog, err := exercise.LoadCatalog(cmd.Context(), src)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tLANGUAGE")
	for _, ex := range filterDifficulty(catalog.List(), listDifficulty) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ex.ID, ex.Title, ex.Difficulty, ex.Language)
	}
	return w.Flush()
}

func filterDifficulty(list []domain.Exercise, difficulty string) []domain.Exercise {
	if difficulty == "" {
		return list
	}
	out := list[:0]
	for _, ex := range list {
		if string(ex.Difficulty) == difficulty {
			out = append(out, ex)
		}
	}
	return out
}

func runExercisesImport(cmd *cobra.Command, args []string) error {
	dir, err := codelabDir()
	if err != nil {
		return err
	}

	packDir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	dbPath := importDB
	if dbPath == "" {
		dbPath = filepath.Join(dir, "exercises", "catalog.db")
	}

	n, err := importPack(packDir, dbPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exercises into %s\n", n, dbPath)

	if importUse {
		cfg, err := config.LoadLocalConfigFrom(dir)
		if err != nil {
			return err
		}
		cfg.Catalog = config.CatalogConfig{Source: config.CatalogSQLite, Path: dbPath}
		if err := config.SaveLocalConfig(dir, cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog source set to sqlite")
	}
	return nil
}

// importPack loads the pack at packDir into the database at dbPath and
// reports how many exercises the catalog now holds
func importPack(packDir, dbPath string) (int, error) {
	loader := exercise.NewLoader(filepath.Dir(packDir))
	exercises, err := loader.LoadPackExercises(filepath.Base(packDir))
	if err != nil {
		return 0, fmt.Errorf("load pack: %w", err)
	}
	if len(exercises) == 0 {
		return 0, domain.ErrEmptyCatalog
	}

	db, err := sqlite.OpenMigrated(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open catalog database: %w", err)
	}
	defer db.Close()

	store := sqlite.NewExerciseStore(db)
	if err := store.Import(filepath.Base(packDir), exercises); err != nil {
		return 0, err
	}
	return store.Count()
}
