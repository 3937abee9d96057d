package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidItemType   = errors.New("invalid item type")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidTransition = errors.New("payment status cannot change once finalized")
)

type PaymentStore interface {
	Create(ctx context.Context, payment models.Payment) error
	GetByID(ctx context.Context, id string) (models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Payment, error)
	ListByUserTypeStatus(ctx context.Context, userID string, itemType models.ItemType, status models.PaymentStatus) ([]models.Payment, error)
	SetStatusIfPending(ctx context.Context, id string, status models.PaymentStatus) (models.Payment, error)
	HasApproved(ctx context.Context, userID string, itemID string) (bool, error)
}

type ProgressSeeder interface {
	Upsert(ctx context.Context, id string, userID string, subcategoryID string) error
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type CategoryFinder interface {
	GetByID(ctx context.Context, id string) (models.Category, error)
}

type SubcategoryFinder interface {
	GetByID(ctx context.Context, id string) (models.Subcategory, error)
}

type VideoLister interface {
	ListBySubcategory(ctx context.Context, subcategoryID string) ([]models.Video, error)
}

type PDFFinder interface {
	GetByID(ctx context.Context, id string) (models.PDF, error)
}

type BookFinder interface {
	GetByID(ctx context.Context, id string) (models.Book, error)
}

// PaymentService owns the entitlement ledger: payment claims, the
// pending→approved/rejected state machine, and the progress record a
// course approval seeds.
type PaymentService struct {
	payments      PaymentStore
	progress      ProgressSeeder
	users         UserFinder
	categories    CategoryFinder
	subcategories SubcategoryFinder
	videos        VideoLister
	pdfs          PDFFinder
	books         BookFinder
	log           zerolog.Logger
}

func NewPaymentService(
	payments PaymentStore,
	progress ProgressSeeder,
	users UserFinder,
	categories CategoryFinder,
	subcategories SubcategoryFinder,
	videos VideoLister,
	pdfs PDFFinder,
	books BookFinder,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		progress:      progress,
		users:         users,
		categories:    categories,
		subcategories: subcategories,
		videos:        videos,
		pdfs:          pdfs,
		books:         books,
		log:           log,
	}
}

type SubmitPaymentInput struct {
	UserID        string
	ItemID        string
	ItemType      models.ItemType
	Amount        float64
	Method        string
	TransactionID string
}

// Submit records a pending payment claim. The (user, item) pair is unique;
// a second claim is a conflict, never an overwrite.
func (s *PaymentService) Submit(ctx context.Context, input SubmitPaymentInput) (models.Payment, error) {
	if !input.ItemType.Valid() {
		return models.Payment{}, ErrInvalidItemType
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return models.Payment{}, err
	}
	if err := s.checkItemExists(ctx, input.ItemType, input.ItemID); err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		ID:            ids.New(),
		UserID:        input.UserID,
		ItemID:        input.ItemID,
		ItemType:      input.ItemType,
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
		Status:        models.PaymentStatusPending,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (s *PaymentService) checkItemExists(ctx context.Context, itemType models.ItemType, itemID string) error {
	switch itemType {
	case models.ItemTypeCourse:
		if _, err := s.subcategories.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrSubcategoryNotFound) {
				return ErrItemNotFound
			}
			return err
		}
	case models.ItemTypePDF:
		if _, err := s.pdfs.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrPDFNotFound) {
				return ErrItemNotFound
			}
			return err
		}
	case models.ItemTypeBook:
		if _, err := s.books.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				return ErrItemNotFound
			}
			return err
		}
	default:
		return ErrInvalidItemType
	}
	return nil
}

// CourseDetail resolves a course payment through the catalog tree: the
// purchased subcategory, its parent category and its ordered videos.
type CourseDetail struct {
	Subcategory models.Subcategory
	Category    models.Category
	Videos      []models.Video
}

// ItemDetail is the resolved side of the polymorphic item reference.
// Exactly one branch is set, matching the payment's item type.
type ItemDetail struct {
	Type   models.ItemType
	Course *CourseDetail
	PDF    *models.PDF
	Book   *models.Book
}

type PaymentDetail struct {
	Payment models.Payment
	Item    ItemDetail
}

func (s *PaymentService) List(ctx context.Context) ([]PaymentDetail, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, payments), nil
}

func (s *PaymentService) ListByUser(ctx context.Context, userID string) ([]PaymentDetail, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, payments), nil
}

// ApprovedPDFs lists the PDFs a user is entitled to download.
func (s *PaymentService) ApprovedPDFs(ctx context.Context, userID string) ([]models.PDF, error) {
	payments, err := s.payments.ListByUserTypeStatus(ctx, userID, models.ItemTypePDF, models.PaymentStatusApproved)
	if err != nil {
		return nil, err
	}

	var pdfs []models.PDF
	for _, payment := range payments {
		pdf, err := s.pdfs.GetByID(ctx, payment.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrPDFNotFound) {
				continue
			}
			return nil, err
		}
		pdfs = append(pdfs, pdf)
	}
	return pdfs, nil
}

func (s *PaymentService) populate(ctx context.Context, payments []models.Payment) []PaymentDetail {
	details := make([]PaymentDetail, 0, len(payments))
	for _, payment := range payments {
		detail := PaymentDetail{
			Payment: payment,
			Item:    ItemDetail{Type: payment.ItemType},
		}

		// Population is best-effort: a payment whose item was deleted
		// still lists, with the item branch left empty.
		switch payment.ItemType {
		case models.ItemTypeCourse:
			course, err := s.resolveCourse(ctx, payment.ItemID)
			if err != nil {
				s.logResolveFailure(payment, err)
			} else {
				detail.Item.Course = course
			}
		case models.ItemTypePDF:
			pdf, err := s.pdfs.GetByID(ctx, payment.ItemID)
			if err != nil {
				s.logResolveFailure(payment, err)
			} else {
				detail.Item.PDF = &pdf
			}
		case models.ItemTypeBook:
			book, err := s.books.GetByID(ctx, payment.ItemID)
			if err != nil {
				s.logResolveFailure(payment, err)
			} else {
				detail.Item.Book = &book
			}
		}

		details = append(details, detail)
	}
	return details
}

func (s *PaymentService) resolveCourse(ctx context.Context, subcategoryID string) (*CourseDetail, error) {
	subcategory, err := s.subcategories.GetByID(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, subcategory.CategoryID)
	if err != nil {
		return nil, err
	}
	videos, err := s.videos.ListBySubcategory(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{
		Subcategory: subcategory,
		Category:    category,
		Videos:      videos,
	}, nil
}

func (s *PaymentService) logResolveFailure(payment models.Payment, err error) {
	s.log.Warn().Err(err).
		Str("payment_id", payment.ID).
		Str("item_id", payment.ItemID).
		Str("item_type", string(payment.ItemType)).
		Msg("payment item resolution failed")
}

// SetStatus drives the state machine: pending may become approved or
// rejected, nothing else moves. Approving a course seeds the progress
// record BEFORE the status flip so a failed seed leaves the payment
// pending and safely retryable.
func (s *PaymentService) SetStatus(ctx context.Context, paymentID string, status models.PaymentStatus) (models.Payment, error) {
	if status != models.PaymentStatusApproved && status != models.PaymentStatusRejected {
		return models.Payment{}, ErrInvalidStatus
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	if payment.Status.Terminal() {
		return models.Payment{}, ErrInvalidTransition
	}

	if status == models.PaymentStatusApproved && payment.ItemType == models.ItemTypeCourse {
		if err := s.progress.Upsert(ctx, ids.New(), payment.UserID, payment.ItemID); err != nil {
			return models.Payment{}, fmt.Errorf("seed progress: %w", err)
		}
	}

	updated, err := s.payments.SetStatusIfPending(ctx, paymentID, status)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentFinalized) {
			return models.Payment{}, ErrInvalidTransition
		}
		return models.Payment{}, err
	}
	return updated, nil
}

// Entitled reports whether the user holds an approved payment for the item.
func (s *PaymentService) Entitled(ctx context.Context, userID string, itemID string) (bool, error) {
	return s.payments.HasApproved(ctx, userID, itemID)
}
