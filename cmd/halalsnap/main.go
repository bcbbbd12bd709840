package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/halalsnap/halalsnap/internal/analysis"
	"github.com/halalsnap/halalsnap/internal/barcode"
	"github.com/halalsnap/halalsnap/internal/database"
	"github.com/halalsnap/halalsnap/internal/logging"
	"github.com/halalsnap/halalsnap/internal/server"
)

func main() {
	port := os.Getenv("HALALSNAP_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HALALSNAP_DB_PATH")
	if dbPath == "" {
		dbPath = "halalsnap.db"
	}

	logger := logging.Setup(os.Getenv("HALALSNAP_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	aiClient := analysis.NewGeminiClient(analysis.Config{
		ProjectID:       os.Getenv("GOOGLE_PROJECT_ID"),
		Location:        os.Getenv("GOOGLE_LOCATION"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		Model:           os.Getenv("HALALSNAP_MODEL"),
	})
	defer aiClient.Close()

	barcodeClient := barcode.NewClient(barcode.Config{
		BaseURL: os.Getenv("HALALSNAP_OFF_URL"),
	})

	srv := server.New(db, aiClient, barcodeClient, logger)

	// Rate limiter entries expire on their own; sweep them hourly so the map
	// does not grow without bound.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()
	defer close(cleanupDone)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("HalalSnap running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
