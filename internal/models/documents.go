package models

import (
	"time"
)

// Canonical document types the extraction model may return.
const (
	TypeInvoice  = "Invoice"
	TypeReceipt  = "Receipt"
	TypeContract = "Contract"
	TypeOther    = "Other"
)

const (
	VendorUnknown      = "Unknown Vendor"
	VendorReviewNeeded = "Review Needed"
)

// DateLayout is the only accepted format for document and reminder dates.
const DateLayout = "2006-01-02"

type Document struct {
	ID               string    `json:"id" db:"id"`
	OwnerID          string    `json:"owner_id" db:"owner_id"`
	StorageKey       string    `json:"storage_key" db:"storage_key"`
	Vendor           string    `json:"vendor" db:"vendor"`
	Date             *string   `json:"date" db:"doc_date"`
	Amount           *string   `json:"amount" db:"amount"`
	Type             string    `json:"type" db:"type"`
	ReminderDate     *string   `json:"reminder_date" db:"reminder_date"`
	Confidence       float64   `json:"confidence" db:"confidence"`
	ExtractionFailed bool      `json:"extraction_failed" db:"extraction_failed"`
	ContentType      string    `json:"content_type" db:"content_type"`
	PageCount        *int      `json:"page_count,omitempty" db:"page_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	// Category is Type resolved against the current category set; not stored.
	Category string `json:"category" db:"-"`
}

type UploadRequest struct {
	OwnerID  string
	Data     []byte
	MIMEType string
	Filename string
}

// ExtractionResult is the structured answer of the extraction model. It is
// never persisted as-is.
type ExtractionResult struct {
	Vendor     *string `json:"vendor"`
	Date       *string `json:"date"`
	Amount     *string `json:"amount"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// DocumentPatch carries a user edit. A nil field is left untouched; an empty
// string clears nullable fields.
type DocumentPatch struct {
	Vendor       *string `json:"vendor"`
	Date         *string `json:"date"`
	Amount       *string `json:"amount"`
	Type         *string `json:"type"`
	ReminderDate *string `json:"reminder_date"`
}

func (p DocumentPatch) Empty() bool {
	return p.Vendor == nil && p.Date == nil && p.Amount == nil && p.Type == nil && p.ReminderDate == nil
}

type DocumentFilter struct {
	Query  string
	Type   string
	From   string
	To     string
	Limit  int
	Offset int
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

type SignedURLResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListResponse struct {
	Documents []*Document `json:"documents"`
	Count     int         `json:"count"`
}
