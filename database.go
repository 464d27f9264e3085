// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package agendex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/agendex/ai"
	"github.com/poiesic/agendex/ai/openai"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/ingestion"
	"github.com/poiesic/agendex/lexical"
	"github.com/poiesic/agendex/search"
	"github.com/poiesic/agendex/storage"
	"github.com/poiesic/agendex/storage/badger"
	"github.com/poiesic/agendex/tokenize"
	"github.com/poiesic/agendex/vector"
)

// Database bundles the chunk and agenda stores, the embedding service,
// and the lexical index holder behind one handle. It is the composition
// root: searchers and ingestion pipelines are built from it, there are
// no package-level singletons.
type Database struct {
	backend      *badger.Backend
	chunkRepo    storage.ChunkRepository
	agendaRepo   storage.AgendaRepository
	embedder     ai.Embedder
	lexicalIndex *lexical.Holder
	tokenizer    tokenize.Tokenizer
	indexDir     string
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	tokenizer tokenize.Tokenizer
	indexDir  string
	inMemory  bool
	logger    *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbedder injects an embedder directly, bypassing the AI config.
// Intended for tests and alternative providers.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithTokenizer overrides the default tokenizer. The same tokenizer
// must be used for index builds and queries.
func WithTokenizer(tokenizer tokenize.Tokenizer) DatabaseOption {
	return func(o *databaseOptions) {
		if tokenizer != nil {
			o.tokenizer = tokenizer
		}
	}
}

// WithIndexDir sets the directory holding the lexical index artifacts.
// When set, NewDatabase tries to load the index; a load failure
// disables the lexical path instead of failing startup.
func WithIndexDir(dir string) DatabaseOption {
	return func(o *databaseOptions) {
		o.indexDir = dir
	}
}

// WithInMemory opens the backing store in memory. Intended for tests.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets a custom logger.
// Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the store at filePath and wires up the retrieval
// stack. A missing or stale lexical index is not fatal: searches run
// vector-only until BuildLexicalIndex is called.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:  ai.DefaultConfig(), // Default if not provided
		tokenizer: tokenize.NewSimple(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	db := &Database{
		backend:      backend,
		chunkRepo:    badger.NewChunkRepository(backend),
		agendaRepo:   badger.NewAgendaRepository(backend),
		embedder:     embedder,
		lexicalIndex: lexical.NewHolder(nil),
		tokenizer:    options.tokenizer,
		indexDir:     options.indexDir,
		logger:       options.logger,
	}

	if db.indexDir != "" {
		idx, err := lexical.Load(db.indexDir, db.tokenizer)
		if err != nil {
			// Degrade, don't crash: queries run vector-only until the
			// index is rebuilt.
			db.logger.Warn("lexical index unavailable, searches run vector-only",
				"dir", db.indexDir, "err", err)
		} else {
			db.lexicalIndex.Swap(idx)
			db.logger.Info("lexical index loaded", "dir", db.indexDir, "chunks", idx.Len())
		}
	}

	return db, nil
}

// Close closes the repositories and the backing store.
func (db *Database) Close() error {
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.agendaRepo.Close(); err != nil {
		db.logger.Error("error closing agenda repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) AgendaRepository() storage.AgendaRepository {
	return db.agendaRepo
}

// LexicalIndex returns the holder publishing the active lexical index.
func (db *Database) LexicalIndex() *lexical.Holder {
	return db.lexicalIndex
}

// BuildLexicalIndex rebuilds the BM25 index from the stored chunk
// corpus and swaps it in. When an index directory is configured the
// artifacts are written there first, so a crash mid-write never
// replaces a good on-disk index with a partial one.
func (db *Database) BuildLexicalIndex(ctx context.Context) error {
	var chunks []*core.Chunk
	err := db.chunkRepo.ForEachChunk(ctx, func(chunk *core.Chunk) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read chunk corpus: %w", err)
	}

	idx, err := lexical.Build(chunks, db.tokenizer, lexical.WithLogger(db.logger))
	if err != nil {
		return err
	}

	if db.indexDir != "" {
		if err := lexical.Save(idx, db.indexDir); err != nil {
			return fmt.Errorf("failed to persist lexical index: %w", err)
		}
	}

	db.lexicalIndex.Swap(idx)
	return nil
}

// NewSearcher builds a searcher over this database's stores and index.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	retriever := vector.NewRetriever(db.embedder, db.chunkRepo,
		vector.WithLogger(db.logger))
	return search.NewSearcher(db.lexicalIndex, retriever, db.agendaRepo, opts...)
}

// NewIngestionPipeline builds an ingestion pipeline over this
// database's stores and embedder.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.agendaRepo, db.embedder, opts...)
}
