package game

import "fmt"

// Investment kinds.
const (
	InvestAcquisition = "acquisition"
	InvestMarketing   = "marketing"
	InvestRecruitment = "recruitment"
)

// AcquisitionCost is the fixed price of buying a competitor company.
const AcquisitionCost = 500000

const maxInvestments = 100

// Investment is one completed spend on company growth.
type Investment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Day         int    `json:"day"`
}

// InvestmentCost resolves the actual charge for a kind. Acquisitions ignore
// the requested amount.
func InvestmentCost(kind string, amount int64) (int64, error) {
	switch kind {
	case InvestAcquisition:
		return AcquisitionCost, nil
	case InvestMarketing, InvestRecruitment:
		if amount <= 0 {
			return 0, ErrInvalidAmount
		}
		return amount, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInvestment, kind)
	}
}

// InvestmentLog keeps the most recent investments, newest first.
type InvestmentLog struct {
	entries []Investment
}

// NewInvestmentLog restores a log from saved entries (newest first).
func NewInvestmentLog(entries []Investment) *InvestmentLog {
	l := &InvestmentLog{}
	for i := len(entries) - 1; i >= 0; i-- {
		l.Add(entries[i])
	}
	return l
}

// Add prepends inv, evicting the oldest entry past the cap.
func (l *InvestmentLog) Add(inv Investment) {
	l.entries = append([]Investment{inv}, l.entries...)
	if len(l.entries) > maxInvestments {
		l.entries = l.entries[:maxInvestments]
	}
}

// Entries returns a copy, newest first.
func (l *InvestmentLog) Entries() []Investment {
	out := make([]Investment, len(l.entries))
	copy(out, l.entries)
	return out
}
