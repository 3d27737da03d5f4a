// Package arbitrage scores matched market pairs for riskless cross-venue
// arbitrage: combinations of opposing positions whose combined cost is below
// the guaranteed $1 payout.
package arbitrage

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/domain"
)

var one = decimal.NewFromInt(1)

// Evaluator enumerates arbitrage combinations over a matched pair. It is
// stateless apart from the injected alias dictionary and safe for concurrent
// use.
type Evaluator struct {
	aliases *alias.Dictionary
}

// NewEvaluator creates an Evaluator backed by the given dictionary.
func NewEvaluator(aliases *alias.Dictionary) *Evaluator {
	return &Evaluator{aliases: aliases}
}

// Evaluate enumerates the two possible combinations for the pair's subject
// team and returns every one whose profit strictly exceeds minProfit:
//
//  1. YES on Kalshi plus the opposing Polymarket outcome
//     (cost = kalshiYes + polyNo)
//  2. The subject team's Polymarket outcome plus NO on Kalshi
//     (cost = polyYes + kalshiNo)
//
// Kalshi's two asks are independent quotes; Polymarket's two outcome prices
// are complementary by construction, so the opposing outcome's listed price
// is the NO side. The subject team is aligned to its Polymarket outcome by
// canonical name: when the team code has no dictionary entry, or neither
// Polymarket label matches, the pair cannot be evaluated and the result is
// empty, never a guess by outcome position. A missing ask suppresses the
// combination that needs it rather than pricing it as zero.
//
// Ranking is the caller's concern; both combinations may qualify.
func (e *Evaluator) Evaluate(pair domain.MatchedPair, minProfit decimal.Decimal) []domain.Opportunity {
	team := pair.Kalshi.Outcomes[0].Label
	entry, ok := e.aliases.ByCode(pair.Kalshi.League, team)
	if !ok {
		return nil
	}

	sameIdx := -1
	for i, out := range pair.Polymarket.Outcomes {
		if out.Label == entry.Name {
			sameIdx = i
			break
		}
	}
	if sameIdx < 0 {
		return nil
	}

	polyYes := pair.Polymarket.Outcomes[sameIdx].PriceYes
	polyNo := pair.Polymarket.Outcomes[1-sameIdx].PriceYes
	kalshiYes := pair.Kalshi.Outcomes[0].PriceYes
	kalshiNo := pair.Kalshi.Outcomes[1].PriceYes

	base := domain.Opportunity{
		KalshiTicker: pair.Kalshi.ID,
		PolySlug:     pair.Polymarket.ID,
		League:       pair.Kalshi.League,
		Team:         team,
		OutcomeLabel: entry.Name,
	}

	var opps []domain.Opportunity

	if kalshiYes != nil && polyNo != nil {
		cost := kalshiYes.Add(*polyNo)
		if profit := one.Sub(cost); profit.GreaterThan(minProfit) {
			opp := base
			opp.Direction = domain.DirYesKalshiNoPoly
			opp.KalshiPrice = *kalshiYes
			opp.PolyPrice = *polyNo
			opp.Cost = cost
			opp.Profit = profit
			opps = append(opps, opp)
		}
	}

	if polyYes != nil && kalshiNo != nil {
		cost := polyYes.Add(*kalshiNo)
		if profit := one.Sub(cost); profit.GreaterThan(minProfit) {
			opp := base
			opp.Direction = domain.DirYesPolyNoKalshi
			opp.KalshiPrice = *kalshiNo
			opp.PolyPrice = *polyYes
			opp.Cost = cost
			opp.Profit = profit
			opps = append(opps, opp)
		}
	}

	return opps
}

// Best returns the highest-profit opportunity of the slice, or nil when it is
// empty.
func Best(opps []domain.Opportunity) *domain.Opportunity {
	var best *domain.Opportunity
	for i := range opps {
		if best == nil || opps[i].Profit.GreaterThan(best.Profit) {
			best = &opps[i]
		}
	}
	return best
}
