package pipeline

import (
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/models"
)

// Fallback is the result saved when extraction cannot produce anything
// usable. The upload is kept and flagged for manual review.
func Fallback(now time.Time) models.ExtractionResult {
	vendor := models.VendorReviewNeeded
	date := now.Format(models.DateLayout)

	return models.ExtractionResult{
		Vendor:     &vendor,
		Date:       &date,
		Amount:     nil,
		Type:       models.TypeOther,
		Confidence: 0,
	}
}
