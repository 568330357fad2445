package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	// MinPasswordLength is the minimum accepted password length for local accounts.
	MinPasswordLength = 6
)

// EmailRX is the pattern used to validate email addresses on registration.
var EmailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type (
	// Date is a calendar date (no time-of-day component), always UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID        int64     `json:"id"`
		Username  string    `json:"username"`
		Password  *string   `json:"-"`
		Email     *string   `json:"email"`
		GoogleID  *string   `json:"google_id"`
		AvatarURL *string   `json:"avatar_url"`
		Provider  string    `json:"provider"`
		IsActive  bool      `json:"is_active"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Category struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		ImageLink   *string   `json:"image_link"`
		Description *string   `json:"description"`
		IsActive    bool      `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	Type struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		ImageLink   *string   `json:"image_link"`
		Description *string   `json:"description"`
		IsActive    bool      `json:"is_active"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	AvoidedExpense struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		CategoryID  *int64          `json:"category_id"`
		TypeID      *int64          `json:"type_id"`
		ExpenseDate Date            `json:"expense_date"`
		Description *string         `json:"description"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	Deficit struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		StartDate   Date            `json:"start_date"`
		EndDate     Date            `json:"end_date"`
		Description *string         `json:"description"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	Goal struct {
		ID           int64           `json:"id"`
		UserID       int64           `json:"user_id"`
		Name         string          `json:"name"`
		TargetAmount decimal.Decimal `json:"target_amount"`
		StartDate    Date            `json:"start_date"`
		EndDate      Date            `json:"end_date"`
		Description  *string         `json:"description"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}

	// AvoidedExpenseWithRelations expands the optional references of an
	// avoided expense with the joined user, category and type names.
	AvoidedExpenseWithRelations struct {
		AvoidedExpense
		Username     string  `json:"username"`
		CategoryName *string `json:"category_name"`
		TypeName     *string `json:"type_name"`
	}
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidAmount = errors.New("amount must be greater than 0")
	ErrEmptyDate     = errors.New("date is required")
	ErrDateOrder     = errors.New("start date must be before or equal to end date")
)

// NewDate builds a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so dates round-trip through database/sql.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan accepts time.Time (DATE columns) and string representations.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), 10)])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (u User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Type) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e AvoidedExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.ExpenseDate.IsZero() {
		return ErrEmptyDate
	}
	return nil
}

func (d Deficit) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return ErrEmptyDate
	}
	if d.StartDate.After(d.EndDate.Time) {
		return ErrDateOrder
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.StartDate.IsZero() || g.EndDate.IsZero() {
		return ErrEmptyDate
	}
	if g.StartDate.After(g.EndDate.Time) {
		return ErrDateOrder
	}
	return nil
}
