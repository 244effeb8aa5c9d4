package payment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gin-checkout-core/internal/pkg/errs"
)

var (
	cardNumberRegex = regexp.MustCompile(`^[0-9]{16}$`)
	cvvRegex        = regexp.MustCompile(`^[0-9]{3,4}$`)
	holderNameRegex = regexp.MustCompile(`^[\p{L}][\p{L} '\-]*[\p{L}]$`)
	expiryRegex     = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2}|[0-9]{4})$`)
	numberStripper  = strings.NewReplacer(" ", "", "-", "")
)

// Card holds raw card fields as submitted. It must never be logged or stored.
type Card struct {
	Number     string
	CVV        string
	HolderName string
	Expiry     string
}

// CardSummary is the only card data that is persisted.
type CardSummary struct {
	Last4 string
	Brand string
}

func ValidateCard(c Card, now time.Time) (CardSummary, error) {
	number := numberStripper.Replace(c.Number)
	if !cardNumberRegex.MatchString(number) {
		return CardSummary{}, errs.Wrap(errs.ErrInvalidCard, "card number must have 16 digits")
	}
	if !cvvRegex.MatchString(c.CVV) {
		return CardSummary{}, errs.Wrap(errs.ErrInvalidCard, "cvv must have 3 or 4 digits")
	}
	if err := validateHolderName(c.HolderName); err != nil {
		return CardSummary{}, err
	}
	if err := validateExpiry(c.Expiry, now); err != nil {
		return CardSummary{}, err
	}
	return CardSummary{
		Last4: number[len(number)-4:],
		Brand: DetectBrand(number),
	}, nil
}

func validateHolderName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 100 || !holderNameRegex.MatchString(name) {
		return errs.Wrap(errs.ErrInvalidCard, "holder name must be 2-100 letters, spaces, apostrophes or hyphens")
	}
	return nil
}

// validateExpiry accepts MM/YY and MM/YYYY. A card stays valid through the last
// day of its expiry month.
func validateExpiry(expiry string, now time.Time) error {
	m := expiryRegex.FindStringSubmatch(strings.TrimSpace(expiry))
	if m == nil {
		return errs.Wrap(errs.ErrInvalidCard, "expiry must be MM/YY or MM/YYYY")
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		year += 2000
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return errs.Wrap(errs.ErrInvalidCard, "card is expired")
	}
	return nil
}

func DetectBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case hasPrefixInRange(number, 2, 51, 55), hasPrefixInRange(number, 4, 2221, 2720):
		return "mastercard"
	case strings.HasPrefix(number, "6011"), strings.HasPrefix(number, "65"):
		return "discover"
	case strings.HasPrefix(number, "636368"), strings.HasPrefix(number, "504175"), strings.HasPrefix(number, "509"):
		return "elo"
	default:
		return "unknown"
	}
}

func hasPrefixInRange(number string, digits, lo, hi int) bool {
	if len(number) < digits {
		return false
	}
	v, err := strconv.Atoi(number[:digits])
	if err != nil {
		return false
	}
	return v >= lo && v <= hi
}
