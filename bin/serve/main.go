package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"photo-gallery/cmd"
	"photo-gallery/pkg/config"
	"photo-gallery/pkg/handlers"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the gallery session
	service, release, err := cmd.OpenGallery(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open gallery: %v", err)
	}
	defer release()

	_ = cmd.InitialFetch(service)

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), handlers.New(service, "./views/index.pug").Router()); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
