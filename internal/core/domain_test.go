package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", d.String())
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("15/06/2025")
	assert.Error(t, err)
	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 6, 15)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-15"`, string(b))

	var parsed Date
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.Equal(t, d.String(), parsed.String())

	var zero Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &zero))
	assert.True(t, zero.IsZero())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 6, 15, 13, 45, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, "2025-06-15", d.String())

	require.NoError(t, d.Scan("2025-01-02 00:00:00"))
	assert.Equal(t, "2025-01-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestEmailRX(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com"}
	invalid := []string{"", "plain", "a@b", "a b@c.de", "@example.com"}
	for _, e := range valid {
		assert.True(t, EmailRX.MatchString(e), e)
	}
	for _, e := range invalid {
		assert.False(t, EmailRX.MatchString(e), e)
	}
}

func TestAvoidedExpenseValidate(t *testing.T) {
	base := AvoidedExpense{
		Name:        "coffee",
		Amount:      decimal.RequireFromString("0.01"),
		ExpenseDate: NewDate(2025, 6, 1),
	}
	assert.NoError(t, base.Validate())

	e := base
	e.Name = "  "
	assert.ErrorIs(t, e.Validate(), ErrEmptyName)

	e = base
	e.Amount = decimal.Zero
	assert.ErrorIs(t, e.Validate(), ErrInvalidAmount)

	e = base
	e.Amount = decimal.RequireFromString("-1")
	assert.ErrorIs(t, e.Validate(), ErrInvalidAmount)

	e = base
	e.ExpenseDate = Date{}
	assert.ErrorIs(t, e.Validate(), ErrEmptyDate)
}

func TestDeficitValidate(t *testing.T) {
	base := Deficit{
		Name:      "rent",
		Amount:    decimal.NewFromInt(100),
		StartDate: NewDate(2025, 1, 1),
		EndDate:   NewDate(2025, 1, 31),
	}
	assert.NoError(t, base.Validate())

	// Equal dates are a valid single-day interval.
	d := base
	d.EndDate = d.StartDate
	assert.NoError(t, d.Validate())

	d = base
	d.StartDate = NewDate(2025, 2, 1)
	assert.ErrorIs(t, d.Validate(), ErrDateOrder)
}

func TestGoalValidate(t *testing.T) {
	base := Goal{
		Name:         "vacation",
		TargetAmount: decimal.NewFromInt(500),
		StartDate:    NewDate(2025, 1, 1),
		EndDate:      NewDate(2025, 12, 31),
	}
	assert.NoError(t, base.Validate())

	g := base
	g.TargetAmount = decimal.Zero
	assert.ErrorIs(t, g.Validate(), ErrInvalidAmount)
}

func TestUserPasswordNeverMarshalled(t *testing.T) {
	secret := "hash"
	b, err := json.Marshal(User{Username: "alice", Password: &secret})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
}
