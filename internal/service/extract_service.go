package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"daybill/internal/config"
	"daybill/internal/domain"
	"daybill/internal/ingest"
	"daybill/internal/report"
)

// ExtractUploadInput is the DTO for extract upload requests.
type ExtractUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ExtractService holds normalized extracts and serves day-scoped views and
// reports over them. Extracts live in process memory only; restarting the
// service forgets them.
type ExtractService interface {
	Upload(input ExtractUploadInput) (*domain.ExtractInfo, error)
	Get(id uuid.UUID) (*domain.ExtractInfo, error)
	Records(id uuid.UUID, day time.Time) ([]domain.VisitRecord, error)
	Summary(id uuid.UUID, day time.Time) ([]domain.CategorySummary, error)
	Report(id uuid.UUID, day time.Time) ([]byte, string, error)
	Delete(id uuid.UUID) error
}

// extract is one normalized upload plus its memoized reports. The record
// set is immutable after normalization; reports are pure functions of
// (records, day), so caching them per day is safe.
type extract struct {
	info    domain.ExtractInfo
	set     *domain.RecordSet
	reports map[string][]byte // keyed by day, YYYY-MM-DD
}

type extractService struct {
	cfg *config.UploadConfig
	log zerolog.Logger

	mu         sync.RWMutex
	byID       map[uuid.UUID]*extract
	byChecksum map[string]uuid.UUID
}

// NewExtractService creates a new ExtractService implementation.
func NewExtractService(cfg *config.UploadConfig, log zerolog.Logger) ExtractService {
	return &extractService{
		cfg:        cfg,
		log:        log,
		byID:       make(map[uuid.UUID]*extract),
		byChecksum: make(map[string]uuid.UUID),
	}
}

func (s *extractService) Upload(input ExtractUploadInput) (*domain.ExtractInfo, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	raw, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	// Re-uploading identical bytes is a cache hit, not a new extract.
	s.mu.RLock()
	if id, ok := s.byChecksum[checksum]; ok {
		info := s.byID[id].info
		s.mu.RUnlock()
		return &info, nil
	}
	s.mu.RUnlock()

	set, err := ingest.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, domain.ErrEmptyExtract
	}
	for _, w := range set.Warnings {
		s.log.Warn().
			Str("file", input.Header.Filename).
			Str("warning", w).
			Msg("extract schema anomaly")
	}

	e := &extract{
		info: domain.ExtractInfo{
			ID:         uuid.New(),
			FileName:   input.Header.Filename,
			Checksum:   checksum,
			RowCount:   len(set.Records),
			MinDate:    set.MinDate,
			MaxDate:    set.MaxDate,
			Categories: domain.Categories(set.Records),
			Warnings:   set.Warnings,
			UploadedAt: time.Now().UTC(),
		},
		set:     set,
		reports: make(map[string][]byte),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byChecksum[checksum]; ok {
		info := s.byID[id].info
		return &info, nil
	}
	s.byID[e.info.ID] = e
	s.byChecksum[checksum] = e.info.ID

	s.log.Info().
		Str("extract_id", e.info.ID.String()).
		Str("file", input.Header.Filename).
		Int("rows", e.info.RowCount).
		Int("categories", len(e.info.Categories)).
		Msg("extract normalized")
	return &e.info, nil
}

func (s *extractService) Get(id uuid.UUID) (*domain.ExtractInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrExtractNotFound
	}
	info := e.info
	return &info, nil
}

func (s *extractService) Records(id uuid.UUID, day time.Time) ([]domain.VisitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrExtractNotFound
	}
	if err := checkRange(e.set, day); err != nil {
		return nil, err
	}
	return e.set.ForDay(day), nil
}

func (s *extractService) Summary(id uuid.UUID, day time.Time) ([]domain.CategorySummary, error) {
	records, err := s.Records(id, day)
	if err != nil {
		return nil, err
	}
	return report.Aggregate(records), nil
}

func (s *extractService) Report(id uuid.UUID, day time.Time) ([]byte, string, error) {
	key := day.Format("2006-01-02")
	fileName := "Report_" + day.Format("20060102") + ".xlsx"

	s.mu.RLock()
	e, ok := s.byID[id]
	if ok {
		if data, hit := e.reports[key]; hit {
			s.mu.RUnlock()
			return data, fileName, nil
		}
	}
	s.mu.RUnlock()
	if !ok {
		return nil, "", domain.ErrExtractNotFound
	}

	if err := checkRange(e.set, day); err != nil {
		return nil, "", err
	}

	daySet := &domain.RecordSet{
		Records: e.set.ForDay(day),
		Columns: e.set.Columns,
	}
	data, err := report.BuildWorkbook(daySet, day)
	if err != nil {
		return nil, "", fmt.Errorf("assembling report: %w", err)
	}

	s.mu.Lock()
	e.reports[key] = data
	s.mu.Unlock()

	s.log.Info().
		Str("extract_id", id.String()).
		Str("date", key).
		Int("rows", len(daySet.Records)).
		Int("bytes", len(data)).
		Msg("report assembled")
	return data, fileName, nil
}

func (s *extractService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return domain.ErrExtractNotFound
	}
	delete(s.byChecksum, e.info.Checksum)
	delete(s.byID, id)
	return nil
}

// checkRange enforces the collaborator contract that the selected date lies
// within the extract's min/max entry dates.
func checkRange(set *domain.RecordSet, day time.Time) error {
	y, m, d := day.Date()
	day = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if day.Before(set.MinDate) || day.After(set.MaxDate) {
		return domain.ErrDateOutOfRange
	}
	return nil
}
