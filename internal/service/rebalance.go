package service

import (
	"errors"
	"fmt"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// per-slice drift beyond which a buy/sell is suggested; exactly 0.5
	// is still a hold
	actionThreshold = decimal.RequireFromString("0.5")
	// total absolute drift beyond which rebalancing is flagged (strict)
	driftThreshold = decimal.NewFromInt(5)
)

const defaultPieColor = "#3B82F6"

// HoldingsSource supplies current allocations and weights from actual
// holdings. No brokerage integration exists in this system, so the
// default source reports zero everywhere; a real source can be plugged
// in without touching the engine.
type HoldingsSource interface {
	PieAllocation(pie *models.Pie) decimal.Decimal
	SliceWeight(sl *models.Slice) decimal.Decimal
}

// ZeroHoldings reports zero current holdings for every pie and slice.
type ZeroHoldings struct{}

func (ZeroHoldings) PieAllocation(*models.Pie) decimal.Decimal { return decimal.Zero }
func (ZeroHoldings) SliceWeight(*models.Slice) decimal.Decimal { return decimal.Zero }

// RebalanceService computes drift between target and current allocations
// and applies validated batches of allocation changes.
type RebalanceService struct {
	DB       *gorm.DB
	Pies     *PieService
	Holdings HoldingsSource
}

func NewRebalanceService(db *gorm.DB, pies *PieService, holdings HoldingsSource) *RebalanceService {
	if holdings == nil {
		holdings = ZeroHoldings{}
	}
	return &RebalanceService{DB: db, Pies: pies, Holdings: holdings}
}

// SliceRebalanceItem is the per-slice drift breakdown.
type SliceRebalanceItem struct {
	SliceID         string          `json:"slice_id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name,omitempty"`
	CurrentWeight   decimal.Decimal `json:"current_weight"`
	TargetWeight    decimal.Decimal `json:"target_weight"`
	Drift           decimal.Decimal `json:"drift"`
	SuggestedAction string          `json:"suggested_action"` // buy / sell / hold
}

// PieRebalanceItem is the per-pie drift breakdown.
type PieRebalanceItem struct {
	PieID             string               `json:"pie_id"`
	Name              string               `json:"name"`
	Color             string               `json:"color"`
	CurrentAllocation decimal.Decimal      `json:"current_allocation"`
	TargetAllocation  decimal.Decimal      `json:"target_allocation"`
	Drift             decimal.Decimal      `json:"drift"`
	Slices            []SliceRebalanceItem `json:"slices"`
}

// RebalanceAnalysis is the full drift report for a portfolio.
type RebalanceAnalysis struct {
	PortfolioID      string             `json:"portfolio_id"`
	TotalDrift       decimal.Decimal    `json:"total_drift"`
	Pies             []PieRebalanceItem `json:"pies"`
	NeedsRebalancing bool               `json:"needs_rebalancing"`
}

// RebalanceAction sets a pie's new target allocation.
type RebalanceAction struct {
	PieID         string          `json:"pie_id" binding:"required"`
	NewAllocation decimal.Decimal `json:"new_allocation"`
}

// RebalanceResult reports the outcome of an execute or auto-rebalance.
type RebalanceResult struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	UpdatedPies []string `json:"updated_pies"`
}

// resolvePortfolio checks the portfolio exists and belongs to the user.
func (s *RebalanceService) resolvePortfolio(portfolioID string, userID uint) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.DB.Where("id = ?", portfolioID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("portfolio not found")
		}
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	if p.UserID != userID {
		return nil, notFoundf("portfolio not found")
	}
	return &p, nil
}

// Analyze computes current-vs-target drift for every active pie and
// slice of the portfolio's owner. Read-only.
func (s *RebalanceService) Analyze(portfolioID string, userID uint) (*RebalanceAnalysis, error) {
	p, err := s.resolvePortfolio(portfolioID, userID)
	if err != nil {
		return nil, err
	}

	pies, err := s.Pies.List(p.UserID, false)
	if err != nil {
		return nil, err
	}

	items := make([]PieRebalanceItem, 0, len(pies))
	totalDrift := decimal.Zero

	for i := range pies {
		pie := &pies[i]
		current := s.Holdings.PieAllocation(pie)
		drift := pie.TargetAllocation.Sub(current)
		totalDrift = totalDrift.Add(drift.Abs())

		sliceItems := make([]SliceRebalanceItem, 0, len(pie.Slices))
		for j := range pie.Slices {
			sl := &pie.Slices[j]
			currentWeight := s.Holdings.SliceWeight(sl)
			sliceDrift := sl.TargetWeight.Sub(currentWeight)
			sliceItems = append(sliceItems, SliceRebalanceItem{
				SliceID:         sl.ID,
				Symbol:          sl.Symbol,
				Name:            sl.Name,
				CurrentWeight:   currentWeight,
				TargetWeight:    sl.TargetWeight,
				Drift:           sliceDrift,
				SuggestedAction: classifyAction(sliceDrift),
			})
		}

		color := pie.Color
		if color == "" {
			color = defaultPieColor
		}
		items = append(items, PieRebalanceItem{
			PieID:             pie.ID,
			Name:              pie.Name,
			Color:             color,
			CurrentAllocation: current,
			TargetAllocation:  pie.TargetAllocation,
			Drift:             drift,
			Slices:            sliceItems,
		})
	}

	return &RebalanceAnalysis{
		PortfolioID:      portfolioID,
		TotalDrift:       totalDrift,
		Pies:             items,
		NeedsRebalancing: totalDrift.GreaterThan(driftThreshold),
	}, nil
}

// classifyAction maps slice drift to a suggested action. The thresholds
// are exclusive: a drift of exactly ±0.5 stays a hold.
func classifyAction(drift decimal.Decimal) string {
	switch {
	case drift.GreaterThan(actionThreshold):
		return "buy"
	case drift.LessThan(actionThreshold.Neg()):
		return "sell"
	default:
		return "hold"
	}
}

// Execute applies a batch of allocation changes. The batch total is
// validated against 100% in isolation before anything is written —
// callers submit the full target set when changing several pies. Each
// action is then checked and applied in order; a failing action aborts
// the rest but already-applied updates stay in effect (clients re-query
// and retry).
func (s *RebalanceService) Execute(portfolioID string, userID uint, actions []RebalanceAction) (*RebalanceResult, error) {
	p, err := s.resolvePortfolio(portfolioID, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range actions {
		if a.NewAllocation.IsNegative() {
			return nil, invalidf("allocation for pie %s must not be negative", a.PieID)
		}
		total = total.Add(a.NewAllocation)
	}
	if total.GreaterThan(maxTotalAllocation) {
		return nil, invalidf("total allocation (%s%%) cannot exceed 100%%", total.StringFixed(2))
	}

	updated := make([]string, 0, len(actions))
	for _, a := range actions {
		if _, err := s.Pies.Get(a.PieID, p.UserID); err != nil {
			if IsNotFound(err) {
				return nil, notFoundf("pie %s not found in portfolio", a.PieID)
			}
			return nil, err
		}
		if err := s.Pies.SetAllocation(a.PieID, p.UserID, a.NewAllocation); err != nil {
			return nil, err
		}
		updated = append(updated, a.PieID)
	}

	return &RebalanceResult{
		Success:     true,
		Message:     fmt.Sprintf("Successfully rebalanced %d pies", len(updated)),
		UpdatedPies: updated,
	}, nil
}

// AutoRebalance verifies ownership and recommends manual review. No
// allocation optimizer exists in this system; the endpoint is advisory
// only.
func (s *RebalanceService) AutoRebalance(portfolioID string, userID uint) (*RebalanceResult, error) {
	if _, err := s.resolvePortfolio(portfolioID, userID); err != nil {
		return nil, err
	}
	return &RebalanceResult{
		Success:     true,
		Message:     "Auto-rebalance analysis complete. Manual review recommended.",
		UpdatedPies: []string{},
	}, nil
}
