package management

import (
	"regexp"
	"strings"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/phone"
)

const minPhoneDigits = 7

var (
	leadEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	leadPhonePattern = regexp.MustCompile(`^[\+\d\s\-]+$`)
)

const (
	msgInvalidEmail      = "Enter a valid email address."
	msgInvalidPhone      = "Enter a valid phone number with at least 7 digits."
	msgProductDivision   = "Product does not belong to the selected division."
	msgProbabilityLocked = "Probability of completion cannot be changed after creation."
	msgDuplicateCompany  = "A lead for this company already exists."
	msgCompanyRequired   = "This field may not be blank."
	fieldEmail           = "email"
	fieldPhone           = "phone"
	fieldProduct         = "productId"
	fieldProbability     = "probabilityOfCompletion"
	fieldCompany         = "company"
)

// checkContact validates the optional e-mail and phone of a lead.
func checkContact(fields apperr.FieldErrors, email, phoneNumber string) {
	if email != "" && !leadEmailPattern.MatchString(email) {
		fields.Add(fieldEmail, msgInvalidEmail)
	}
	if phoneNumber != "" && (!leadPhonePattern.MatchString(phoneNumber) || phone.CountDigits(phoneNumber) < minPhoneDigits) {
		fields.Add(fieldPhone, msgInvalidPhone)
	}
}

// checkProductDivision enforces that a lead's product is sold by the lead's division.
func checkProductDivision(fields apperr.FieldErrors, product *domain.Product, division domain.Division) {
	if product != nil && product.Division != division {
		fields.Add(fieldProduct, msgProductDivision)
	}
}

func normalizeLeadPhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return phone.NormalizeE164(trimmed)
}
