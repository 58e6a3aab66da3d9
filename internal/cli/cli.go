package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"uni-meal-planner/internal/catalog"
	"uni-meal-planner/internal/clipper"
	"uni-meal-planner/internal/config"
	"uni-meal-planner/internal/database"
	"uni-meal-planner/internal/export"
	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/httpapi"
	"uni-meal-planner/internal/mcp"
	"uni-meal-planner/internal/metrics"
	"uni-meal-planner/internal/planner"
	"uni-meal-planner/internal/shopping"
)

// BuildCLI assembles the command tree. Configuration comes from the
// environment (see internal/config); commands that need the database or
// the catalogs open them lazily.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uni-meal-planner",
		Short: "Rule-based meal and hydration planning for a student athlete",
		Long: `uni-meal-planner builds one day of meals and drink reminders around
classes and training sessions:
- energy, macro and water targets from profile and schedule
- meal slots timed against sessions, filled from a food catalog
- reproducible plans via seeds, with single-meal swaps
- CSV/JSON export and a grocery list over recent days`,
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildPlanCommand())
	rootCmd.AddCommand(buildTargetsCommand())
	rootCmd.AddCommand(buildSwapCommand())
	rootCmd.AddCommand(buildExportCommand())
	rootCmd.AddCommand(buildGroceriesCommand())
	rootCmd.AddCommand(buildHistoryCommand())
	rootCmd.AddCommand(buildCleanupCommand())
	rootCmd.AddCommand(buildImportCommand())
	rootCmd.AddCommand(buildTokenCommand())
	rootCmd.AddCommand(buildServeCommand())
	rootCmd.AddCommand(buildMCPCommand())

	return rootCmd
}

func buildPlanCommand() *cobra.Command {
	var dayFilePath string
	var dayType string
	var seed int64
	var csvPath, jsonPath string
	var noSave bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a meal and hydration plan for one day",
		Long: `Generate a full day of meals and drink reminders. Describe the day
with a YAML day file (--day), or plan a stock day with --type and the
default training layout. Without either, a session-free class day for
the stock athlete is planned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(dayFilePath, dayType, seed, csvPath, jsonPath, noSave)
		},
	}

	cmd.Flags().StringVarP(&dayFilePath, "day", "d", "", "YAML day file describing the day to plan")
	cmd.Flags().StringVarP(&dayType, "type", "t", "", "stock day type: tournament, classes or rest")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for reproducible plans (0 picks a fresh one)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the plan as CSV to this path")
	cmd.Flags().StringVar(&jsonPath, "json", "", "also write the plan as JSON to this path")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the plan in history")

	return cmd
}

// buildRequest turns the plan/targets flags into a planner request.
func buildRequest(dayFilePath, dayType string, seed int64) (planner.PlanRequest, error) {
	var day *config.DayFile
	if dayFilePath != "" {
		loaded, err := config.LoadDayFile(dayFilePath)
		if err != nil {
			return planner.PlanRequest{}, err
		}
		day = loaded
		if dayType != "" {
			day.DayType = dayType
		}
	} else {
		day = &config.DayFile{DayType: dayType, DefaultSessions: dayType != ""}
	}
	if seed != 0 {
		day.Seed = &seed
	}
	return day.PlanRequest()
}

func runPlan(dayFilePath, dayType string, seed int64, csvPath, jsonPath string, noSave bool) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	req, err := buildRequest(dayFilePath, dayType, seed)
	if err != nil {
		return err
	}

	p, err := loadPlanner(cfg)
	if err != nil {
		return err
	}

	plan, err := p.GenerateDailyPlan(req)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	renderPlan(os.Stdout, plan)

	if csvPath != "" {
		data, err := export.CSV(plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(csvPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		fmt.Printf("Wrote %s\n", csvPath)
	}
	if jsonPath != "" {
		data, err := export.JSON(plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
		fmt.Printf("Wrote %s\n", jsonPath)
	}

	if noSave {
		return nil
	}
	store, db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := store.Save(0, req, plan)
	if err != nil {
		return fmt.Errorf("failed to record plan: %w", err)
	}
	fmt.Printf("Recorded plan %s (seed %d). Swap a meal with 'uni-meal-planner swap'.\n", entry.ID, req.Seed)
	return nil
}

func buildTargetsCommand() *cobra.Command {
	var dayFilePath string
	var dayType string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Estimate daily energy, macro and water targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(dayFilePath, dayType, 0)
			if err != nil {
				return err
			}
			targets, err := planner.EstimateDailyTargets(req.WeightKg, req.HeightCm, req.Age, req.Sex, req.ActivityLevel, req.Goal, req.Sessions)
			if err != nil {
				return err
			}
			renderTargets(os.Stdout, targets)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dayFilePath, "day", "d", "", "YAML day file describing the day")
	cmd.Flags().StringVarP(&dayType, "type", "t", "", "stock day type: tournament, classes or rest")

	return cmd
}

func buildSwapCommand() *cobra.Command {
	var purpose string
	var slotClock string

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap one meal in the most recent plan",
		Long: `Rebuild a single meal of the most recent plan with a different
template, keeping every other meal and the hydration schedule intact.
The slot is picked by purpose (breakfast, lunch, dinner, pre-event,
post-workout, snack) and, when a purpose appears more than once, by its
clock time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwap(purpose, slotClock)
		},
	}

	cmd.Flags().StringVarP(&purpose, "purpose", "p", "", "purpose of the meal to swap")
	cmd.Flags().StringVar(&slotClock, "time", "", "slot time (HH:MM) when the purpose is ambiguous")
	cmd.MarkFlagRequired("purpose")

	return cmd
}

func runSwap(purpose, slotClock string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	store, db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := store.Latest(0)
	if err != nil {
		return fmt.Errorf("no plan to swap a meal in: %w", err)
	}

	var slot *planner.Meal
	for i := range entry.Plan.Meals {
		meal := &entry.Plan.Meals[i]
		if string(meal.Purpose) != purpose {
			continue
		}
		if slotClock != "" && meal.Time.Format("15:04") != slotClock {
			continue
		}
		slot = meal
		break
	}
	if slot == nil {
		return fmt.Errorf("the latest plan has no %s meal matching the given time", purpose)
	}

	req := entry.Request
	req.Swap = &planner.SwapDirective{
		Purpose:         slot.Purpose,
		Time:            slot.Time.Format(time.RFC3339),
		ExcludeTemplate: slot.Template,
	}

	p, err := loadPlanner(cfg)
	if err != nil {
		return err
	}
	plan, err := p.GenerateDailyPlan(req)
	if err != nil {
		return fmt.Errorf("failed to regenerate plan: %w", err)
	}

	renderPlan(os.Stdout, plan)

	newEntry, err := store.Save(0, req, plan)
	if err != nil {
		return fmt.Errorf("failed to record swapped plan: %w", err)
	}
	fmt.Printf("Recorded swapped plan %s.\n", newEntry.ID)
	return nil
}

func buildExportCommand() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the most recent plan as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(format, outPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format: csv or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults to meal_plan_<date>.<format>)")

	return cmd
}

func runExport(format, outPath string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown export format %q (use csv or json)", format)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}
	store, db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := store.Latest(0)
	if err != nil {
		return fmt.Errorf("no plan to export: %w", err)
	}

	var data []byte
	if format == "csv" {
		data, err = export.CSV(&entry.Plan)
	} else {
		data, err = export.JSON(&entry.Plan)
	}
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = export.Filename(entry.Request.Wake, format)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func buildGroceriesCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "groceries",
		Short: "Aggregate a grocery list from recent plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > 14 {
				return fmt.Errorf("days must be between 1 and 14")
			}
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			store, db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := store.ListRecent(0, days)
			if err != nil {
				return err
			}
			plans := make([]*planner.DailyPlan, 0, len(entries))
			for _, e := range entries {
				plans = append(plans, &e.Plan)
			}
			fmt.Println(shopping.FormatList(shopping.BuildList(plans...)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 1, "number of recent plans to aggregate")

	return cmd
}

func buildHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			store, db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := store.ListRecent(0, limit)
			if err != nil {
				return err
			}
			renderHistory(os.Stdout, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of plans to list")

	return cmd
}

func buildCleanupCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old plans from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			store, db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			affected, err := store.Cleanup(days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Printf("Successfully removed %d old plans.\n", affected)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "keep plans from the last N days")

	return cmd
}

func buildImportCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import foods from a nutrition table on a web page",
		Long: `Scrape the first nutrition table found at the URL and merge its rows
into the food catalog. Existing foods with the same name are replaced;
new foods are appended. Use --dry-run to preview without writing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing the catalog")

	return cmd
}

func runImport(url string, dryRun bool) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	foods, err := clipper.NewClipper().ClipURL(ctx, url)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Found %d foods at %s:\n", len(foods), url)
	for _, f := range foods {
		fmt.Printf("  • %s — %.0f kcal / 100 g\n", f.Name, f.KcalPer100g)
	}
	if dryRun {
		fmt.Println("Dry run, catalog not changed.")
		return nil
	}

	existing, err := catalog.LoadFoods(cfg.FoodsPath)
	if err != nil {
		// A missing catalog just means this is the first import.
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		existing = nil
	}

	merged := catalog.MergeFoods(existing, foods)
	if err := catalog.SaveFoods(cfg.FoodsPath, merged); err != nil {
		return err
	}
	fmt.Printf("Catalog now has %d foods (%s).\n", len(merged), cfg.FoodsPath)
	return nil
}

func buildTokenCommand() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWTSecret(); err != nil {
				return err
			}
			token, err := httpapi.MintToken(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func buildServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the authenticated HTTP planning API",
		Long: `Start the HTTP API with plan history and Prometheus metrics.
Requires JWT_SECRET; mint client tokens with the token command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to LISTEN_ADDR or :8080)")

	return cmd
}

func runServe(addr string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ListenAddr
	}

	p, err := loadPlanner(cfg)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := history.NewStore(db.SQL)

	collector := metrics.NewCollector()
	collector.SetCatalogSize(len(p.Foods()), len(p.Templates()))

	srv := httpapi.NewServer(httpapi.Config{ListenAddr: addr, JWTSecret: cfg.JWTSecret}, p, store, collector)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("Received shutdown signal, stopping gracefully...")
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func buildMCPCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the planner as MCP tools",
		Long:  "Expose estimate_targets, generate_plan, swap_meal and get_catalog as HTTP-based MCP tool calls for agent frontends.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8011", "listen address")

	return cmd
}

func runMCP(addr string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	p, err := loadPlanner(cfg)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := history.NewStore(db.SQL)

	srv, err := mcp.NewPlannerServer(addr, p, store, nil)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(context.Background()); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("Received shutdown signal, stopping gracefully...")
	case err := <-errCh:
		return err
	}

	return srv.Stop()
}

func loadPlanner(cfg *config.Config) (*planner.Planner, error) {
	foods, err := catalog.LoadFoods(cfg.FoodsPath)
	if err != nil {
		return nil, err
	}
	templates, err := catalog.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, err
	}
	return planner.NewPlanner(foods, templates), nil
}

func openHistory(cfg *config.Config) (*history.Store, *database.DB, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return history.NewStore(db.SQL), db, nil
}
