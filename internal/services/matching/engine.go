package matching

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	"github.com/ssmgcode/cargo-expreso-control/internal/normalize"
)

var hundred = decimal.NewFromInt(100)

// ExpectedCommission is cod * percentage / 100.
func ExpectedCommission(cod, percentage decimal.Decimal) decimal.Decimal {
	return cod.Mul(percentage).Div(hundred)
}

// CheckCommission recomputes the commission of a settlement and compares it
// with the recorded value using exact decimal equality.
func CheckCommission(s *models.Settlement) (domain.CommissionCheck, error) {
	pct, err := normalize.Percentage(s.Commission)
	if err != nil {
		return domain.CommissionCheck{}, fmt.Errorf("settlement %s: %w", s.ID, err)
	}

	check := domain.CommissionCheck{
		Verdict:    domain.CommissionCorrect,
		Percentage: pct,
		Expected:   ExpectedCommission(s.CODAmount, pct),
		Recorded:   s.CommissionValue,
	}
	if !check.Expected.Equal(check.Recorded) {
		check.Verdict = domain.CommissionMismatch
	}
	return check, nil
}
