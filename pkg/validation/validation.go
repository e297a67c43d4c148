package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const (
	MinWorkers = 1
	MaxWorkers = 20

	MaxPageLimit = 100
)

var sortPattern = regexp.MustCompile(`^-?[A-Za-z][A-Za-z0-9_.]*$`)

func ValidateWorkerCount(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return fmt.Errorf("worker count must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers)
	}
	return nil
}

func ValidatePage(page int) error {
	if page < 1 {
		return fmt.Errorf("page must be a positive integer, got %d", page)
	}
	return nil
}

func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxPageLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxPageLimit, limit)
	}
	return nil
}

// ValidateID accepts any non-empty id without whitespace or slashes.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if strings.ContainsAny(id, " \t\r\n/") {
		return fmt.Errorf("invalid id: %q", id)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateSort accepts a field name with an optional leading '-' for descending order.
func ValidateSort(sort string) error {
	if sort == "" {
		return nil
	}
	if !sortPattern.MatchString(sort) {
		return fmt.Errorf("invalid sort: %s (use a field name, prefixed with '-' for descending)", sort)
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

func ValidateQuantity(qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be a positive integer, got %d", qty)
	}
	return nil
}

func ValidateRevenuePeriod(period string) error {
	switch period {
	case "day", "week", "month", "year":
		return nil
	default:
		return fmt.Errorf("invalid period: %s (must be one of: day, week, month, year)", period)
	}
}
