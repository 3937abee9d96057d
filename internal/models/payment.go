package models

import "time"

type ItemType string

const (
	ItemTypeCourse ItemType = "course"
	ItemTypePDF    ItemType = "pdf"
	ItemTypeBook   ItemType = "book"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeCourse, ItemTypePDF, ItemTypeBook:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

// Payment records a user's claim of having paid for one catalog item.
// ItemID resolves through ItemType: a course payment references a
// subcategory, a pdf payment a PDF record, a book payment a Book record.
type Payment struct {
	ID            string
	UserID        string
	ItemID        string
	ItemType      ItemType
	Amount        float64
	Method        string
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
