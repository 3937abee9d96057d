package handlers

import (
	"time"

	"learnhub/api/internal/models"
	"learnhub/api/internal/service"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type sessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	IPAddress string    `json:"ipAddress"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Browser:   s.Device.Browser,
		OS:        s.Device.OS,
		IPAddress: s.Device.IPAddress,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type subcategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newSubcategoryResponse(s models.Subcategory) subcategoryResponse {
	return subcategoryResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CategoryID:  s.CategoryID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type videoResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	DurationSecs  int       `json:"durationSecs"`
	Sequence      int       `json:"sequence"`
	SubcategoryID string    `json:"subcategoryId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// newVideoResponse deliberately omits RemoteID: the DRM identifier is only
// handed out through the playback endpoint after an entitlement check.
func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		DurationSecs:  v.DurationSecs,
		Sequence:      v.Sequence,
		SubcategoryID: v.SubcategoryID,
		CreatedAt:     v.CreatedAt,
	}
}

type pdfResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryID    string    `json:"categoryId"`
	SubcategoryID string    `json:"subcategoryId"`
	Price         float64   `json:"price"`
	FileSize      int64     `json:"fileSize"`
	Downloads     int       `json:"downloads"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newPDFResponse(p models.PDF) pdfResponse {
	return pdfResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Price:         p.Price,
		FileSize:      p.FileSize,
		Downloads:     p.Downloads,
		CreatedAt:     p.CreatedAt,
	}
}

type bookResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newBookResponse(b models.Book) bookResponse {
	return bookResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		ImageURL:    b.ImageURL,
		CreatedAt:   b.CreatedAt,
	}
}

type courseItemResponse struct {
	Subcategory subcategoryResponse `json:"subcategory"`
	Category    categoryResponse    `json:"category"`
	Videos      []videoResponse     `json:"videos"`
}

type paymentItemResponse struct {
	Type   string              `json:"type"`
	Course *courseItemResponse `json:"course,omitempty"`
	PDF    *pdfResponse        `json:"pdf,omitempty"`
	Book   *bookResponse       `json:"book,omitempty"`
}

type paymentResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	ItemID        string               `json:"itemId"`
	ItemType      string               `json:"itemType"`
	Amount        float64              `json:"amount"`
	Method        string               `json:"method"`
	TransactionID string               `json:"transactionId"`
	Status        string               `json:"status"`
	Item          *paymentItemResponse `json:"item,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func newPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		ItemID:        p.ItemID,
		ItemType:      string(p.ItemType),
		Amount:        p.Amount,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newPaymentDetailResponse(d service.PaymentDetail) paymentResponse {
	resp := newPaymentResponse(d.Payment)
	item := paymentItemResponse{Type: string(d.Item.Type)}

	switch {
	case d.Item.Course != nil:
		videos := make([]videoResponse, 0, len(d.Item.Course.Videos))
		for _, v := range d.Item.Course.Videos {
			videos = append(videos, newVideoResponse(v))
		}
		item.Course = &courseItemResponse{
			Subcategory: newSubcategoryResponse(d.Item.Course.Subcategory),
			Category:    newCategoryResponse(d.Item.Course.Category),
			Videos:      videos,
		}
	case d.Item.PDF != nil:
		pdf := newPDFResponse(*d.Item.PDF)
		item.PDF = &pdf
	case d.Item.Book != nil:
		book := newBookResponse(*d.Item.Book)
		item.Book = &book
	default:
		// Item no longer resolves; ship the raw reference only.
		resp.Item = nil
		return resp
	}

	resp.Item = &item
	return resp
}

type progressResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	SubcategoryID     string    `json:"subcategoryId"`
	CompletedVideos   []string  `json:"completedVideos"`
	LastAccessedVideo *string   `json:"lastAccessedVideo,omitempty"`
	LastAccessedAt    time.Time `json:"lastAccessedAt"`
	IsCompleted       bool      `json:"isCompleted"`
}

func newProgressResponse(p models.Progress) progressResponse {
	completed := p.CompletedVideos
	if completed == nil {
		completed = []string{}
	}
	return progressResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		SubcategoryID:     p.SubcategoryID,
		CompletedVideos:   completed,
		LastAccessedVideo: p.LastAccessedVideo,
		LastAccessedAt:    p.LastAccessedAt,
		IsCompleted:       p.IsCompleted,
	}
}

type supportResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newSupportResponse(s models.Support) supportResponse {
	return supportResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Subject:   s.Subject,
		Message:   s.Message,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
