// Builds the durable advisor reference index from a directory of
// plain-text corpus files. Safe to re-run: already indexed sources are
// skipped.
package main

import (
	"context"
	"flag"
	"log"

	"ai-studypartner-be/internal/config"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository/indexstore"
	"ai-studypartner-be/internal/service"
	"ai-studypartner-be/pkg/database"
	"ai-studypartner-be/pkg/embedding"
	"ai-studypartner-be/pkg/embedding/jina"
	"ai-studypartner-be/pkg/index"
	pktNats "ai-studypartner-be/pkg/nats"
)

func main() {
	dir := flag.String("dir", "", "corpus directory (defaults to FACULTY_CORPUS_DIR)")
	flag.Parse()

	cfg := config.Load()
	corpusDir := cfg.Corpus.Dir
	if *dir != "" {
		corpusDir = *dir
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	registry := index.NewRegistry(embeddingProvider, indexstore.NewStore(db), sysLogger)

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] NATS unavailable, corpus events will not be published: %v", err)
		natsPub = nil
	}

	facultyService := service.NewFacultyService(registry, natsPub, sysLogger)

	res, err := facultyService.BuildCorpus(context.Background(), corpusDir)
	if err != nil {
		log.Fatalf("Corpus build failed: %v", err)
	}

	log.Printf("Corpus build done: %d sources, %d chunks added, %d skipped",
		res.Sources, res.ChunksAdded, res.SkippedFiles)
}
