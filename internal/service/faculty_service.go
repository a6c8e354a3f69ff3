package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-studypartner-be/internal/dto"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/events"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/nats"
)

type IFacultyService interface {
	BuildCorpus(ctx context.Context, dirPath string) (*dto.CorpusBuildResponse, error)
}

// facultyService loads advisor reference material from a directory of
// plain-text files into the durable reference index. Rebuilding from the
// same directory is a no-op for files already indexed.
type facultyService struct {
	registry  *index.Registry
	publisher *nats.Publisher
	logger    logger.ILogger
}

func NewFacultyService(registry *index.Registry, publisher *nats.Publisher, log logger.ILogger) IFacultyService {
	return &facultyService{
		registry:  registry,
		publisher: publisher,
		logger:    log,
	}
}

func (fs *facultyService) BuildCorpus(ctx context.Context, dirPath string) (*dto.CorpusBuildResponse, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	response := &dto.CorpusBuildResponse{}
	for _, entry := range entries {
		if entry.IsDir() || !isCorpusFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dirPath, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			fs.logger.Warn("FACULTY", "skipping unreadable corpus file", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}

		sourceTag := entry.Name()
		added, skipped, err := fs.registry.IndexReference(ctx, string(raw), sourceTag)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", sourceTag, err)
		}

		response.Sources++
		if skipped {
			response.SkippedFiles++
		} else {
			response.ChunksAdded += added
		}

		if fs.publisher != nil {
			if err := fs.publisher.Publish(ctx, events.NewCorpusBuilt(sourceTag, added, skipped)); err != nil {
				fs.logger.Warn("FACULTY", "failed to publish corpus event", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		fs.logger.Info("FACULTY", "corpus source processed", map[string]interface{}{
			"source_tag": sourceTag,
			"chunks":     added,
			"skipped":    skipped,
		})
	}

	return response, nil
}

func isCorpusFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
