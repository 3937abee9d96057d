package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

type fakePaymentStore struct {
	payments map[string]models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]models.Payment{}}
}

func (s *fakePaymentStore) Create(_ context.Context, payment models.Payment) error {
	for _, p := range s.payments {
		if p.UserID == payment.UserID && p.ItemID == payment.ItemID {
			return repository.ErrDuplicatePayment
		}
	}
	s.payments[payment.ID] = payment
	return nil
}

func (s *fakePaymentStore) GetByID(_ context.Context, id string) (models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (s *fakePaymentStore) List(_ context.Context) ([]models.Payment, error) {
	out := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakePaymentStore) ListByUser(_ context.Context, userID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) ListByUserTypeStatus(_ context.Context, userID string, itemType models.ItemType, status models.PaymentStatus) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.UserID == userID && p.ItemType == itemType && p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) SetStatusIfPending(_ context.Context, id string, status models.PaymentStatus) (models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, repository.ErrPaymentNotFound
	}
	if p.Status != models.PaymentStatusPending {
		return models.Payment{}, repository.ErrPaymentFinalized
	}
	p.Status = status
	s.payments[id] = p
	return p, nil
}

func (s *fakePaymentStore) HasApproved(_ context.Context, userID string, itemID string) (bool, error) {
	for _, p := range s.payments {
		if p.UserID == userID && p.ItemID == itemID && p.Status == models.PaymentStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

type fakeProgressSeeder struct {
	seeded  map[string]string // userID -> subcategoryID
	failErr error
}

func newFakeProgressSeeder() *fakeProgressSeeder {
	return &fakeProgressSeeder{seeded: map[string]string{}}
}

func (s *fakeProgressSeeder) Upsert(_ context.Context, _ string, userID string, subcategoryID string) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.seeded[userID] = subcategoryID
	return nil
}

type fakeCatalog struct {
	users         map[string]models.User
	categories    map[string]models.Category
	subcategories map[string]models.Subcategory
	videos        map[string][]models.Video
	pdfs          map[string]models.PDF
	books         map[string]models.Book
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		users:         map[string]models.User{},
		categories:    map[string]models.Category{},
		subcategories: map[string]models.Subcategory{},
		videos:        map[string][]models.Video{},
		pdfs:          map[string]models.PDF{},
		books:         map[string]models.Book{},
	}
}

type fakeUserFinder struct{ c *fakeCatalog }

func (f fakeUserFinder) GetByID(_ context.Context, id string) (models.User, error) {
	u, ok := f.c.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeCategoryFinder struct{ c *fakeCatalog }

func (f fakeCategoryFinder) GetByID(_ context.Context, id string) (models.Category, error) {
	cat, ok := f.c.categories[id]
	if !ok {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	return cat, nil
}

type fakeSubcategoryFinder struct{ c *fakeCatalog }

func (f fakeSubcategoryFinder) GetByID(_ context.Context, id string) (models.Subcategory, error) {
	sub, ok := f.c.subcategories[id]
	if !ok {
		return models.Subcategory{}, repository.ErrSubcategoryNotFound
	}
	return sub, nil
}

type fakeVideoLister struct{ c *fakeCatalog }

func (f fakeVideoLister) ListBySubcategory(_ context.Context, subcategoryID string) ([]models.Video, error) {
	return f.c.videos[subcategoryID], nil
}

type fakePDFFinder struct{ c *fakeCatalog }

func (f fakePDFFinder) GetByID(_ context.Context, id string) (models.PDF, error) {
	p, ok := f.c.pdfs[id]
	if !ok {
		return models.PDF{}, repository.ErrPDFNotFound
	}
	return p, nil
}

type fakeBookFinder struct{ c *fakeCatalog }

func (f fakeBookFinder) GetByID(_ context.Context, id string) (models.Book, error) {
	b, ok := f.c.books[id]
	if !ok {
		return models.Book{}, repository.ErrBookNotFound
	}
	return b, nil
}

type paymentFixture struct {
	svc      *PaymentService
	store    *fakePaymentStore
	progress *fakeProgressSeeder
	catalog  *fakeCatalog
}

func newPaymentFixture() paymentFixture {
	catalog := newFakeCatalog()
	catalog.users["user-1"] = models.User{ID: "user-1"}
	catalog.categories["cat-1"] = models.Category{ID: "cat-1", Name: "Programming"}
	catalog.subcategories["sub-1"] = models.Subcategory{ID: "sub-1", Name: "Go Basics", CategoryID: "cat-1"}
	catalog.videos["sub-1"] = []models.Video{
		{ID: "vid-1", SubcategoryID: "sub-1", Sequence: 1},
		{ID: "vid-2", SubcategoryID: "sub-1", Sequence: 2},
	}
	catalog.pdfs["pdf-1"] = models.PDF{ID: "pdf-1", Title: "Cheat Sheet"}
	catalog.books["book-1"] = models.Book{ID: "book-1", Name: "Paper Book"}

	store := newFakePaymentStore()
	progress := newFakeProgressSeeder()
	svc := NewPaymentService(
		store, progress,
		fakeUserFinder{catalog},
		fakeCategoryFinder{catalog},
		fakeSubcategoryFinder{catalog},
		fakeVideoLister{catalog},
		fakePDFFinder{catalog},
		fakeBookFinder{catalog},
		zerolog.Nop(),
	)
	return paymentFixture{svc: svc, store: store, progress: progress, catalog: catalog}
}

func submitCoursePayment(t *testing.T, fx paymentFixture) models.Payment {
	t.Helper()
	payment, err := fx.svc.Submit(context.Background(), SubmitPaymentInput{
		UserID:        "user-1",
		ItemID:        "sub-1",
		ItemType:      models.ItemTypeCourse,
		Amount:        49.99,
		Method:        "bank_transfer",
		TransactionID: "txn-100",
	})
	require.NoError(t, err)
	return payment
}

func TestSubmitPayment_StartsPending(t *testing.T) {
	fx := newPaymentFixture()

	payment := submitCoursePayment(t, fx)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.NotEmpty(t, payment.ID)
}

func TestSubmitPayment_Validation(t *testing.T) {
	fx := newPaymentFixture()
	ctx := context.Background()

	_, err := fx.svc.Submit(ctx, SubmitPaymentInput{
		UserID: "user-1", ItemID: "sub-1", ItemType: "subscription",
	})
	assert.ErrorIs(t, err, ErrInvalidItemType)

	_, err = fx.svc.Submit(ctx, SubmitPaymentInput{
		UserID: "ghost", ItemID: "sub-1", ItemType: models.ItemTypeCourse,
	})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = fx.svc.Submit(ctx, SubmitPaymentInput{
		UserID: "user-1", ItemID: "no-such-item", ItemType: models.ItemTypeCourse,
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSubmitPayment_DuplicateRejected(t *testing.T) {
	fx := newPaymentFixture()
	submitCoursePayment(t, fx)

	_, err := fx.svc.Submit(context.Background(), SubmitPaymentInput{
		UserID:        "user-1",
		ItemID:        "sub-1",
		ItemType:      models.ItemTypeCourse,
		Amount:        49.99,
		Method:        "bank_transfer",
		TransactionID: "txn-200",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicatePayment)
}

func TestSetStatus_ApproveCourseSeedsProgress(t *testing.T) {
	fx := newPaymentFixture()
	payment := submitCoursePayment(t, fx)

	updated, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, updated.Status)
	assert.Equal(t, "sub-1", fx.progress.seeded["user-1"])

	entitled, err := fx.svc.Entitled(context.Background(), "user-1", "sub-1")
	require.NoError(t, err)
	assert.True(t, entitled)
}

func TestSetStatus_FailedSeedLeavesPending(t *testing.T) {
	fx := newPaymentFixture()
	payment := submitCoursePayment(t, fx)
	fx.progress.failErr = errors.New("db down")

	_, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusApproved)
	require.Error(t, err)

	// The status never flipped, so the approval can simply be retried.
	stored, err := fx.store.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)

	fx.progress.failErr = nil
	updated, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, updated.Status)
}

func TestSetStatus_RejectDoesNotSeed(t *testing.T) {
	fx := newPaymentFixture()
	payment := submitCoursePayment(t, fx)

	updated, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, updated.Status)
	assert.Empty(t, fx.progress.seeded)
}

func TestSetStatus_InvalidTargets(t *testing.T) {
	fx := newPaymentFixture()
	payment := submitCoursePayment(t, fx)

	_, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = fx.svc.SetStatus(context.Background(), payment.ID, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = fx.svc.SetStatus(context.Background(), "no-such-payment", models.PaymentStatusApproved)
	assert.ErrorIs(t, err, repository.ErrPaymentNotFound)
}

func TestSetStatus_TerminalIsImmutable(t *testing.T) {
	fx := newPaymentFixture()
	payment := submitCoursePayment(t, fx)

	_, err := fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusRejected)
	require.NoError(t, err)

	_, err = fx.svc.SetStatus(context.Background(), payment.ID, models.PaymentStatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListByUser_PopulatesCourseTree(t *testing.T) {
	fx := newPaymentFixture()
	submitCoursePayment(t, fx)

	details, err := fx.svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, details, 1)

	course := details[0].Item.Course
	require.NotNil(t, course)
	assert.Equal(t, "Go Basics", course.Subcategory.Name)
	assert.Equal(t, "Programming", course.Category.Name)
	assert.Len(t, course.Videos, 2)
	assert.Nil(t, details[0].Item.PDF)
	assert.Nil(t, details[0].Item.Book)
}

func TestListByUser_DeletedItemStillLists(t *testing.T) {
	fx := newPaymentFixture()
	submitCoursePayment(t, fx)
	delete(fx.catalog.subcategories, "sub-1")

	details, err := fx.svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Nil(t, details[0].Item.Course)
	assert.Equal(t, "sub-1", details[0].Payment.ItemID)
}

func TestApprovedPDFs(t *testing.T) {
	fx := newPaymentFixture()
	ctx := context.Background()

	payment, err := fx.svc.Submit(ctx, SubmitPaymentInput{
		UserID:        "user-1",
		ItemID:        "pdf-1",
		ItemType:      models.ItemTypePDF,
		Amount:        9.99,
		Method:        "bank_transfer",
		TransactionID: "txn-300",
	})
	require.NoError(t, err)

	// Pending payments grant nothing.
	pdfs, err := fx.svc.ApprovedPDFs(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, pdfs)

	_, err = fx.svc.SetStatus(ctx, payment.ID, models.PaymentStatusApproved)
	require.NoError(t, err)

	pdfs, err = fx.svc.ApprovedPDFs(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, "Cheat Sheet", pdfs[0].Title)
}
