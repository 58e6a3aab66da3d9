package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"uni-meal-planner/internal/catalog"
	"uni-meal-planner/internal/config"
	"uni-meal-planner/internal/database"
	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/metrics"
	"uni-meal-planner/internal/planner"
	"uni-meal-planner/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Missing Telegram configuration: %v", err)
	}

	// 2. Load the catalogs
	foods, err := catalog.LoadFoods(cfg.FoodsPath)
	if err != nil {
		log.Fatalf("Failed to load food catalog: %v", err)
	}
	templates, err := catalog.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}
	mealPlanner := planner.NewPlanner(foods, templates)

	// 3. Initialize the SQLite plan history
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	store := history.NewStore(db.SQL)

	collector := metrics.NewCollector()
	collector.SetCatalogSize(len(foods), len(templates))

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, mealPlanner, store, collector)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 5. Start Server with Graceful Shutdown
	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
