package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/habitboard/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Distribution returns each habit's count and share of the month's total.
// Shares are rounded half away from zero to one decimal place.
func Distribution(s *model.Store, year int, month time.Month) (model.Distribution, error) {
	if err := checkPeriod(year, month); err != nil {
		return model.Distribution{}, err
	}

	dist := model.Distribution{Year: year, Month: month}
	habits := s.Habits()
	for _, h := range habits {
		c := totalForPeriod(h, year, month)
		dist.Total += c
		dist.Shares = append(dist.Shares, model.HabitShare{Name: h.Name, Color: h.Color, Count: c})
	}
	if dist.Total == 0 {
		return dist, nil
	}

	total := decimal.NewFromInt(int64(dist.Total))
	for i := range dist.Shares {
		pct := decimal.NewFromInt(int64(dist.Shares[i].Count)).Mul(hundred).Div(total).Round(1)
		dist.Shares[i].SharePercent = pct.InexactFloat64()
	}
	return dist, nil
}
