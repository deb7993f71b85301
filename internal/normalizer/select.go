package normalizer

import (
	"strings"

	"linesdesk/ingestion/internal/models"
)

// PreferredBookmaker is always shown when an event carries it
const PreferredBookmaker = "fanduel"

// SelectBookmaker picks the one bookmaker to display for an event:
//  1. a bookmaker whose key or title equals "fanduel" (case-insensitive)
//  2. else the most recently updated bookmaker offering h2h, spreads and totals
//  3. else the first bookmaker
//
// Returns nil for an empty list.
func SelectBookmaker(bookmakers []models.Bookmaker) *models.Bookmaker {
	if len(bookmakers) == 0 {
		return nil
	}

	for i := range bookmakers {
		bm := &bookmakers[i]
		if strings.EqualFold(bm.Key, PreferredBookmaker) || strings.EqualFold(bm.Title, PreferredBookmaker) {
			return bm
		}
	}

	var best *models.Bookmaker
	for i := range bookmakers {
		bm := &bookmakers[i]
		if !bm.HasAllMarkets() {
			continue
		}
		// Strictly later wins, so the earliest entry keeps a tie
		if best == nil || bm.LastUpdate.After(best.LastUpdate) {
			best = bm
		}
	}
	if best != nil {
		return best
	}

	return &bookmakers[0]
}
