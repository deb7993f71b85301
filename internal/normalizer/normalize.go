package normalizer

import (
	"strings"
	"time"

	"linesdesk/ingestion/internal/models"
)

// Line is a point/price pair ready for display
type Line struct {
	Point string `json:"point"`
	Price string `json:"price"`
}

// SpreadLines holds both sides of the spread market
type SpreadLines struct {
	Home Line `json:"home"`
	Away Line `json:"away"`
}

// Moneyline holds both sides of the h2h market
type Moneyline struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// TotalLines holds both sides of the totals market
type TotalLines struct {
	Over  Line `json:"over"`
	Under Line `json:"under"`
}

// DisplayOdds is the normalized odds shape the site renders for one event
type DisplayOdds struct {
	Bookmaker    string      `json:"bookmaker"`
	BookmakerKey string      `json:"bookmakerKey"`
	LastUpdate   time.Time   `json:"lastUpdate"`
	Spread       SpreadLines `json:"spread"`
	Moneyline    Moneyline   `json:"moneyline"`
	Total        TotalLines  `json:"total"`
}

// Normalize selects the display bookmaker for the event and extracts its lines.
// Returns nil when the event has no bookmakers; callers render "odds unavailable".
func Normalize(event *models.Event) *DisplayOdds {
	if event == nil {
		return nil
	}
	bm := SelectBookmaker(event.Bookmakers)
	if bm == nil {
		return nil
	}

	out := &DisplayOdds{
		Bookmaker:    bm.Title,
		BookmakerKey: bm.Key,
		LastUpdate:   bm.LastUpdate,
	}

	home, away := teamOutcomes(bm.Market(models.MarketH2H), event.HomeTeam, event.AwayTeam)
	out.Moneyline = Moneyline{
		Home: priceOrPlaceholder(outcomePrice(home)),
		Away: priceOrPlaceholder(outcomePrice(away)),
	}

	home, away = teamOutcomes(bm.Market(models.MarketSpreads), event.HomeTeam, event.AwayTeam)
	out.Spread = SpreadLines{
		Home: spreadLine(home),
		Away: spreadLine(away),
	}

	over, under := totalOutcomes(bm.Market(models.MarketTotals))
	out.Total = TotalLines{
		Over:  totalLine(over),
		Under: totalLine(under),
	}

	return out
}

func spreadLine(o *models.Outcome) Line {
	if o == nil {
		return Line{Point: MissingPoint, Price: MissingPrice}
	}
	return Line{
		Point: pointOrPlaceholder(FormatPoint(o.Point)),
		Price: priceOrPlaceholder(&o.Price),
	}
}

func totalLine(o *models.Outcome) Line {
	if o == nil {
		return Line{Point: MissingPoint, Price: MissingPrice}
	}
	return Line{
		Point: pointOrPlaceholder(FormatTotal(o.Point)),
		Price: priceOrPlaceholder(&o.Price),
	}
}

func outcomePrice(o *models.Outcome) *int {
	if o == nil {
		return nil
	}
	return &o.Price
}

// teamOutcomes finds the home and away outcomes of a team-keyed market
func teamOutcomes(m *models.Market, homeTeam, awayTeam string) (home, away *models.Outcome) {
	if m == nil {
		return nil, nil
	}
	home = findTeamOutcome(m.Outcomes, homeTeam, awayTeam, nil)
	away = findTeamOutcome(m.Outcomes, awayTeam, homeTeam, home)
	return home, away
}

// findTeamOutcome matches team by exact name, falling back to the first outcome
// that is not a total or draw, not the other team, and not already taken.
func findTeamOutcome(outcomes []models.Outcome, team, other string, taken *models.Outcome) *models.Outcome {
	for i := range outcomes {
		if outcomes[i].Name == team {
			return &outcomes[i]
		}
	}
	for i := range outcomes {
		o := &outcomes[i]
		if o == taken || o.Name == other || looksLikeNonTeam(o.Name) {
			continue
		}
		return o
	}
	return nil
}

func looksLikeNonTeam(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "over", "under", "draw", "tie":
		return true
	}
	return strings.HasPrefix(n, "over ") || strings.HasPrefix(n, "under ")
}

// totalOutcomes finds the over and under sides by case-insensitive substring
func totalOutcomes(m *models.Market) (over, under *models.Outcome) {
	if m == nil {
		return nil, nil
	}
	for i := range m.Outcomes {
		n := strings.ToLower(m.Outcomes[i].Name)
		switch {
		case over == nil && strings.Contains(n, "over"):
			over = &m.Outcomes[i]
		case under == nil && strings.Contains(n, "under"):
			under = &m.Outcomes[i]
		}
	}
	return over, under
}
