// Package rag loads reference documents and retrieves passages relevant to a
// question, enriching prompt context with domain knowledge.
package rag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Document is one loaded reference file.
type Document struct {
	Text   string
	Source string
}

// LoadDocuments reads plain-text and markdown files from dir. A missing
// directory is not an error; retrieval simply stays disabled. Unsupported
// formats are skipped with a log line so operators can see what was ignored.
func LoadDocuments(dir string, logger *zap.Logger) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("document directory not found, retrieval disabled", zap.String("dir", dir))
			return nil, nil
		}
		return nil, fmt.Errorf("read document directory %s: %w", dir, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".md" {
			logger.Debug("skipping unsupported document", zap.String("file", name))
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("failed to read document", zap.String("file", name), zap.Error(err))
			continue
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		docs = append(docs, Document{Text: text, Source: name})
	}

	logger.Info("documents loaded", zap.String("dir", dir), zap.Int("count", len(docs)))
	return docs, nil
}
