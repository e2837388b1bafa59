package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KushKG/receipt-splitter/internal/scanning"
)

// IDGenerator generates unique IDs for stored extraction records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidIDGenerator generates random UUID record IDs
type uuidIDGenerator struct{}

func (g *uuidIDGenerator) Generate() string {
	return uuid.New().String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// fallbackElaboration is served whenever the model cannot produce an
// explanation. The elaboration call never surfaces an error to its caller.
const fallbackElaboration = "This appears to be a grocery store item. You might want to check your receipt or ask the person who bought it for more details."

// Service runs extractions and persists their outcomes. The pipeline itself
// is stateless; persistence happens here, after it returns.
type Service struct {
	pipeline    *Pipeline
	client      scanning.Client
	db          DB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(pipeline *Pipeline, client scanning.Client, db DB, storage Storage) *Service {
	return &Service{
		pipeline:    pipeline,
		client:      client,
		db:          db,
		storage:     storage,
		idGenerator: &uuidIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(pipeline *Pipeline, client scanning.Client, db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		pipeline:    pipeline,
		client:      client,
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and
// truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	// Truncate phone-generated long filenames
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// ProcessReceipt runs the extraction pipeline on an upload and stores the
// outcome: the original file in storage and the result as a Record.
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Record, error) {
	result, err := s.pipeline.Process(ctx, Upload{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		slog.Error("Failed to process receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, err
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	record := &Record{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		Text:        result.Text,
		Items:       result.Items,
		Method:      result.Method,
		CreatedAt:   now,
	}

	if err := s.db.SaveRecord(record); err != nil {
		// Clean up file if database save fails
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving extraction record: %w", err)
	}

	return record, nil
}

// ElaborateItem asks the model to explain an ambiguous item name. It never
// fails: any upstream problem yields the generic fallback string.
func (s *Service) ElaborateItem(ctx context.Context, e scanning.Elaboration) string {
	elaboration, err := s.client.ElaborateItem(ctx, e)
	if err != nil {
		slog.Warn("Item elaboration failed, serving fallback",
			"item", e.ItemName,
			"error", err,
		)
		return fallbackElaboration
	}
	return elaboration
}

// GetRecord retrieves a stored extraction by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// ListRecords returns all stored extractions
func (s *Service) ListRecords() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a stored extraction and its file
func (s *Service) DeleteRecord(id string) error {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return fmt.Errorf("getting record for deletion: %w", err)
	}

	if err := s.storage.Delete(record.Filename); err != nil {
		// Log but continue with database deletion
		slog.Warn("Failed to delete file", "filename", record.Filename, "error", err)
	}

	if err := s.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// GetRecordFile retrieves the original uploaded file for a record
func (s *Service) GetRecordFile(id string) ([]byte, string, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting record: %w", err)
	}

	data, err := s.storage.Get(record.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting record file: %w", err)
	}

	return data, record.ContentType, nil
}
