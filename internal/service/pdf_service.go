package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"learnhub/api/internal/cleanup"
	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
)

type PDFStore interface {
	Create(ctx context.Context, pdf models.PDF) error
	GetByID(ctx context.Context, id string) (models.PDF, error)
	List(ctx context.Context) ([]models.PDF, error)
	Update(ctx context.Context, pdf models.PDF) (models.PDF, error)
	IncrementDownloads(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type PDFService struct {
	pdfs          PDFStore
	categories    CategoryFinder
	subcategories SubcategoryFinder
	store         FileStore
	entitlements  Entitler
	cleanup       *cleanup.Queue
	log           zerolog.Logger
}

func NewPDFService(
	pdfs PDFStore,
	categories CategoryFinder,
	subcategories SubcategoryFinder,
	store FileStore,
	entitlements Entitler,
	cleanupQueue *cleanup.Queue,
	log zerolog.Logger,
) *PDFService {
	return &PDFService{
		pdfs:          pdfs,
		categories:    categories,
		subcategories: subcategories,
		store:         store,
		entitlements:  entitlements,
		cleanup:       cleanupQueue,
		log:           log,
	}
}

type PDFInput struct {
	Title         string
	Description   string
	CategoryID    string
	SubcategoryID string
	Price         float64
	File          io.Reader
	FileSize      int64
}

// Create uploads the document first, then validates the catalog refs; a
// failed validation destroys the just-uploaded object before returning.
func (s *PDFService) Create(ctx context.Context, input PDFInput) (models.PDF, error) {
	id := ids.New()
	objectKey := buildPDFKey(id)

	fileURL, err := s.store.Put(ctx, objectKey, input.File, input.FileSize, "application/pdf")
	if err != nil {
		return models.PDF{}, fmt.Errorf("upload pdf: %w", err)
	}

	if err := s.validateRefs(ctx, input.CategoryID, input.SubcategoryID); err != nil {
		s.removeObject(ctx, objectKey)
		return models.PDF{}, err
	}

	pdf := models.PDF{
		ID:            id,
		Title:         input.Title,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Price:         input.Price,
		FileURL:       fileURL,
		FileSize:      input.FileSize,
		ObjectKey:     objectKey,
	}

	if err := s.pdfs.Create(ctx, pdf); err != nil {
		s.removeObject(ctx, objectKey)
		return models.PDF{}, err
	}
	return pdf, nil
}

// Update replaces metadata and, when a new file is supplied, the stored
// object; the superseded object is destroyed best-effort.
func (s *PDFService) Update(ctx context.Context, id string, input PDFInput) (models.PDF, error) {
	existing, err := s.pdfs.GetByID(ctx, id)
	if err != nil {
		return models.PDF{}, err
	}

	if err := s.validateRefs(ctx, input.CategoryID, input.SubcategoryID); err != nil {
		return models.PDF{}, err
	}

	fileURL := existing.FileURL
	fileSize := existing.FileSize
	objectKey := existing.ObjectKey

	if input.File != nil {
		objectKey = buildPDFKey(id)
		fileURL, err = s.store.Put(ctx, objectKey, input.File, input.FileSize, "application/pdf")
		if err != nil {
			return models.PDF{}, fmt.Errorf("upload pdf: %w", err)
		}
		fileSize = input.FileSize
		if existing.ObjectKey != "" && existing.ObjectKey != objectKey {
			s.removeObject(ctx, existing.ObjectKey)
		}
	}

	return s.pdfs.Update(ctx, models.PDF{
		ID:            id,
		Title:         input.Title,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		Price:         input.Price,
		FileURL:       fileURL,
		FileSize:      fileSize,
		ObjectKey:     objectKey,
	})
}

// Delete removes the local record regardless of the remote outcome.
func (s *PDFService) Delete(ctx context.Context, id string) error {
	pdf, err := s.pdfs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if pdf.ObjectKey != "" {
		s.removeObject(ctx, pdf.ObjectKey)
	}
	return s.pdfs.Delete(ctx, id)
}

// Download returns the document for an entitled caller and bumps the
// download counter.
func (s *PDFService) Download(ctx context.Context, id string, userID string, isAdmin bool) (models.PDF, error) {
	pdf, err := s.pdfs.GetByID(ctx, id)
	if err != nil {
		return models.PDF{}, err
	}

	if !isAdmin {
		entitled, err := s.entitlements.Entitled(ctx, userID, pdf.ID)
		if err != nil {
			return models.PDF{}, err
		}
		if !entitled {
			return models.PDF{}, ErrNotEntitled
		}
	}

	if err := s.pdfs.IncrementDownloads(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("pdf_id", id).Msg("bump download counter failed")
	}
	return pdf, nil
}

func (s *PDFService) validateRefs(ctx context.Context, categoryID string, subcategoryID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return err
	}
	if _, err := s.subcategories.GetByID(ctx, subcategoryID); err != nil {
		return err
	}
	return nil
}

func (s *PDFService) removeObject(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("object_key", key).Msg("remove stored pdf failed, queued for retry")
		s.cleanup.Enqueue(ctx, cleanup.KindObject, key)
	}
}

func buildPDFKey(id string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join("pdfs", datePrefix, id+".pdf")
}
