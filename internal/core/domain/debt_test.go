package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusForBalance(t *testing.T) {
	zero := decimal.Zero
	positive := decimal.RequireFromString("150.00")

	t.Run("zero balance clears any status", func(t *testing.T) {
		for _, status := range []DebtStatus{DebtPending, DebtCredited, DebtApproved, DebtPartiallyPaid} {
			d := Debt{DebtStatus: status}
			assert.Equal(t, DebtCleared, d.StatusForBalance(zero))
		}
	})

	t.Run("explicit statuses survive balance changes", func(t *testing.T) {
		for _, status := range []DebtStatus{DebtCredited, DebtApproved, DebtDefaulted, DebtRejected} {
			d := Debt{DebtStatus: status}
			assert.Equal(t, status, d.StatusForBalance(positive))
		}
	})

	t.Run("other statuses fall back to pending", func(t *testing.T) {
		for _, status := range []DebtStatus{DebtPending, DebtPartiallyPaid, DebtCleared} {
			d := Debt{DebtStatus: status}
			assert.Equal(t, DebtPending, d.StatusForBalance(positive))
		}
	})
}
