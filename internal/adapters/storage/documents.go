// internal/adapters/storage/documents.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"
)

// Document categories under a dealer's prefix.
const (
	CategoryInvoices  = "invoices"
	CategorySaleDocs  = "sale-documents"
	CategoryFeeds     = "feeds"
	CategoryChecklist = "checklists"
)

// DocumentStore organizes dealer documents on top of a StorageClient.
// Keys follow dealers/{dealerID}/{category}/{stockID}/{filename} so per-stock
// documents can be listed with a single prefix.
type DocumentStore struct {
	storage StorageClient
	logger  *slog.Logger
}

// NewDocumentStore creates a new dealer document store.
func NewDocumentStore(storage StorageClient, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		storage: storage,
		logger:  logger.With(slog.String("component", "document_store")),
	}
}

// DocumentKey builds the object key for a dealer document.
func DocumentKey(dealerID, category, stockID, filename string) string {
	return path.Join("dealers", dealerID, category, stockID, filename)
}

// StoreInvoicePDF uploads a generated invoice PDF for a stock item and
// returns the stored location.
func (d *DocumentStore) StoreInvoicePDF(ctx context.Context, dealerID, stockID, invoiceNumber string, data io.Reader) (string, error) {
	filename := fmt.Sprintf("%s.pdf", sanitizeFilename(invoiceNumber))
	key := DocumentKey(dealerID, CategoryInvoices, stockID, filename)

	location, err := d.storage.Upload(ctx, key, data, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("failed to store invoice pdf: %w", err)
	}

	d.logger.InfoContext(ctx, "invoice pdf stored",
		slog.String("dealer_id", dealerID),
		slog.String("stock_id", stockID),
		slog.String("key", key))

	return location, nil
}

// StoreFeedFile uploads an inbound stock feed file under the dealer's feeds
// prefix, stamped so repeated uploads never collide.
func (d *DocumentStore) StoreFeedFile(ctx context.Context, dealerID, filename string, data io.Reader) (string, error) {
	stamped := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), sanitizeFilename(filename))
	key := path.Join("dealers", dealerID, CategoryFeeds, stamped)

	if _, err := d.storage.Upload(ctx, key, data, ""); err != nil {
		return "", fmt.Errorf("failed to store feed file: %w", err)
	}

	return key, nil
}

// ListStockDocuments lists document keys for one stock item in a category.
func (d *DocumentStore) ListStockDocuments(ctx context.Context, dealerID, category, stockID string) ([]string, error) {
	prefix := path.Join("dealers", dealerID, category, stockID) + "/"
	keys, err := d.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return keys, nil
}

// DownloadURL returns a presigned URL for a stored document.
func (d *DocumentStore) DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := d.storage.GetPresignedURL(ctx, key, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign document url: %w", err)
	}
	return url, nil
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_", "..", "-")
	name = replacer.Replace(name)
	if name == "" {
		name = "document"
	}
	return name
}
