package validation

import (
	"strings"
	"testing"
)

func TestValidateWorkerCount(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		wantErr bool
	}{
		{"valid minimum", 1, false},
		{"valid middle", 10, false},
		{"valid maximum", 20, false},
		{"too low", 0, true},
		{"negative", -1, true},
		{"too high", 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkerCount(tt.workers)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorkerCount(%d) error = %v, wantErr %v", tt.workers, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePageAndLimit(t *testing.T) {
	if err := ValidatePage(1); err != nil {
		t.Errorf("ValidatePage(1) = %v", err)
	}
	if err := ValidatePage(0); err == nil {
		t.Error("ValidatePage(0) should fail")
	}
	for _, l := range []int{1, 50, MaxPageLimit} {
		if err := ValidateLimit(l); err != nil {
			t.Errorf("ValidateLimit(%d) = %v", l, err)
		}
	}
	for _, l := range []int{0, -5, MaxPageLimit + 1} {
		if err := ValidateLimit(l); err == nil {
			t.Errorf("ValidateLimit(%d) should fail", l)
		}
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"64f1c2e9a1b2c3d4e5f60718", false},
		{"air-max-90", false},
		{"", true},
		{"a b", true},
		{"../admin", true},
		{"id\n", true},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestValidateNonEmptyString(t *testing.T) {
	if err := ValidateNonEmptyString("name", "Runner"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateNonEmptyString("name", "")
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("expected error mentioning field name, got %v", err)
	}
}

func TestValidateSort(t *testing.T) {
	for _, s := range []string{"", "price", "-createdAt", "brand.name"} {
		if err := ValidateSort(s); err != nil {
			t.Errorf("ValidateSort(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"-", "--price", "price desc", "1price", "$where"} {
		if err := ValidateSort(s); err == nil {
			t.Errorf("ValidateSort(%q) should fail", s)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	for _, e := range []string{"ada@example.com", "a.b+c@shop.vn"} {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", e, err)
		}
	}
	for _, e := range []string{"", "ada", "Ada <ada@example.com>", "ada@"} {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) should fail", e)
		}
	}
}

func TestValidateRatingQuantityPeriod(t *testing.T) {
	if ValidateRating(0) == nil || ValidateRating(6) == nil || ValidateRating(5) != nil {
		t.Error("rating bounds are 1..5")
	}
	if ValidateQuantity(0) == nil || ValidateQuantity(1) != nil {
		t.Error("quantity must be positive")
	}
	if ValidateRevenuePeriod("month") != nil || ValidateRevenuePeriod("Month") == nil {
		t.Error("period is case sensitive")
	}
}
