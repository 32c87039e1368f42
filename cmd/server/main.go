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

	"recipepic.dev/recipe-pic-gen/internal/api"
	"recipepic.dev/recipe-pic-gen/internal/config"
	"recipepic.dev/recipe-pic-gen/internal/core"
	"recipepic.dev/recipe-pic-gen/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Initialize the dual-tier history store
	dbStore, err := store.NewDualTierStore(config.AppConfig.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize history store: %v", err)
	}
	defer dbStore.Close()

	// Initialize the Gemini image service
	imageService := core.NewImageService()
	defer imageService.Close()

	// Hydrate the in-memory history from disk
	history := core.NewHistory(dbStore)
	if records := dbStore.Load(); len(records) > 0 {
		history.Seed(records)
		log.Printf("Loaded %d history records", len(records))
	}

	cooldown := core.NewCooldown(time.Duration(config.AppConfig.CooldownMS) * time.Millisecond)
	generationService := core.NewGenerationService(history, imageService, cooldown)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(generationService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // image generation can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight generations settle so their terminal patches reach the
	// store; dbStore.Close (deferred) then flushes pending image writes.
	generationService.Wait()

	log.Println("Server exiting gracefully")
}
