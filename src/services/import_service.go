package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/parsers"
	"github.com/username/pennywise/backend/src/processors"
	"github.com/username/pennywise/backend/src/security/validation"
)

// pendingImport is the staged result parked between RunImport and
// ConfirmImport, keyed by session ID in the session cache.
type pendingImport struct {
	userID string
	unique []models.StagedTransaction
}

type importServiceImpl struct {
	statementProcessor *processors.StatementProcessor
	classifier         *processors.CategoryClassifier
	duplicateDetector  *processors.DuplicateDetector

	transactions TransactionWriter
	categories   CategoryLister
	users        UserGetter

	sessions   *cache.Cache
	sessionTTL time.Duration

	// onCommit lets the wiring invalidate report caches after a commit.
	onCommit func(userID string)
}

// NewImportService wires the statement-import pipeline. onCommit may be
// nil.
func NewImportService(
	statementProcessor *processors.StatementProcessor,
	classifier *processors.CategoryClassifier,
	duplicateDetector *processors.DuplicateDetector,
	transactions TransactionWriter,
	categories CategoryLister,
	users UserGetter,
	sessions *cache.Cache,
	sessionTTL time.Duration,
	onCommit func(userID string),
) ImportService {
	return &importServiceImpl{
		statementProcessor: statementProcessor,
		classifier:         classifier,
		duplicateDetector:  duplicateDetector,
		transactions:       transactions,
		categories:         categories,
		users:              users,
		sessions:           sessions,
		sessionTTL:         sessionTTL,
		onCommit:           onCommit,
	}
}

// RunImport executes parse -> infer -> normalize -> classify ->
// duplicate-check and parks the result for confirmation. Nothing is
// persisted here.
func (s *importServiceImpl) RunImport(ctx context.Context, userID string, file io.Reader, mimeHint string) (*models.ImportResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	parser, err := parsers.GetParser(mimeHint)
	if err != nil {
		return nil, err
	}
	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTransactionsFound
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading importing user: %w", err)
	}

	staged := s.statementProcessor.Process(rows, user.Currency)
	if len(staged) == 0 {
		return nil, ErrNoTransactionsFound
	}

	categories, err := s.categories.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading categories for classification: %w", err)
	}
	staged = s.classifier.Process(staged, categories)

	unique, duplicates := s.duplicateDetector.Partition(ctx, userID, staged)

	sessionID := uuid.NewString()
	s.sessions.Set(sessionID, pendingImport{userID: userID, unique: unique}, s.sessionTTL)

	if unique == nil {
		unique = []models.StagedTransaction{}
	}
	if duplicates == nil {
		duplicates = []models.StagedTransaction{}
	}

	log.Info("Statement import staged",
		"userID", userID, "rows", len(rows), "staged", len(staged),
		"unique", len(unique), "duplicates", len(duplicates),
		"duration", time.Since(start))

	return &models.ImportResult{
		SessionID:          sessionID,
		UniqueTransactions: unique,
		Duplicates:         duplicates,
	}, nil
}

// ConfirmImport persists the selected rows of a staged import. Failures
// on individual rows are logged and skipped; the count of rows actually
// stored is returned. The batch is deliberately not atomic.
func (s *importServiceImpl) ConfirmImport(ctx context.Context, userID, sessionID string, selections []models.ImportSelection) (int, error) {
	log := logger.FromContext(ctx)

	raw, found := s.sessions.Get(sessionID)
	if !found {
		return 0, ErrImportSessionExpired
	}
	pending, ok := raw.(pendingImport)
	if !ok || pending.userID != userID {
		return 0, ErrImportSessionExpired
	}

	imported := 0
	for _, sel := range selections {
		if !sel.Active {
			continue
		}
		if sel.Index < 0 || sel.Index >= len(pending.unique) {
			log.Warn("Import selection index out of range, skipping", "userID", userID, "index", sel.Index)
			continue
		}
		staged := pending.unique[sel.Index]

		categoryID := staged.CategoryID
		if sel.CategoryID != "" {
			categoryID = sel.CategoryID
		}

		// Statement cells are untrusted: strip markup and defuse
		// spreadsheet formula triggers before storing.
		description := validation.SanitizeForFormulaInjection(validation.CleanUserText(staged.Description))

		tx := models.Transaction{
			UserID:      userID,
			Amount:      staged.Amount,
			Currency:    staged.Currency,
			Type:        staged.Type,
			Date:        staged.Date,
			Description: description,
			CategoryID:  categoryID,
		}
		if err := s.transactions.Insert(ctx, &tx); err != nil {
			log.Error("Failed to persist imported transaction, skipping row",
				"userID", userID, "date", staged.Date, "amount", staged.Amount, "error", err)
			continue
		}
		imported++
	}

	s.sessions.Delete(sessionID)
	if imported > 0 && s.onCommit != nil {
		s.onCommit(userID)
	}

	log.Info("Statement import committed", "userID", userID, "selected", len(selections), "imported", imported)
	return imported, nil
}
