package models

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// League is a site league name mapped to an odds API sport key
type League struct {
	Name     string
	SportKey string
	Title    string
}

// Leagues is the fixed set of leagues the site syncs
var Leagues = map[string]League{
	"nfl":   {Name: "nfl", SportKey: "americanfootball_nfl", Title: "NFL"},
	"ncaaf": {Name: "ncaaf", SportKey: "americanfootball_ncaaf", Title: "NCAAF"},
	"nba":   {Name: "nba", SportKey: "basketball_nba", Title: "NBA"},
	"ncaab": {Name: "ncaab", SportKey: "basketball_ncaab", Title: "NCAAB"},
	"mlb":   {Name: "mlb", SportKey: "baseball_mlb", Title: "MLB"},
	"nhl":   {Name: "nhl", SportKey: "icehockey_nhl", Title: "NHL"},
}

// LookupLeague resolves a league name (case-insensitive)
func LookupLeague(name string) (League, error) {
	league, ok := Leagues[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return League{}, fmt.Errorf("unknown league %q", name)
	}
	return league, nil
}

// ResolveLeagues resolves names in order, failing on the first unknown one
func ResolveLeagues(names []string) ([]League, error) {
	leagues := make([]League, 0, len(names))
	for _, name := range names {
		league, err := LookupLeague(name)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

// LeagueNames returns the known league names, sorted
func LeagueNames() []string {
	names := make([]string, 0, len(Leagues))
	for name := range Leagues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LeagueForSportKey maps an odds API sport key back to its league
func LeagueForSportKey(sportKey string) (League, bool) {
	for _, league := range Leagues {
		if league.SportKey == sportKey {
			return league, true
		}
	}
	return League{}, false
}

// leagueImages is the hero image pool per league
var leagueImages = map[string][]string{
	"nfl": {
		"/images/leagues/nfl/stadium-night.jpg",
		"/images/leagues/nfl/kickoff.jpg",
		"/images/leagues/nfl/endzone.jpg",
		"/images/leagues/nfl/sideline.jpg",
	},
	"ncaaf": {
		"/images/leagues/ncaaf/campus-stadium.jpg",
		"/images/leagues/ncaaf/marching-band.jpg",
		"/images/leagues/ncaaf/goalposts.jpg",
	},
	"nba": {
		"/images/leagues/nba/hardwood.jpg",
		"/images/leagues/nba/tipoff.jpg",
		"/images/leagues/nba/rim.jpg",
	},
	"ncaab": {
		"/images/leagues/ncaab/tournament-court.jpg",
		"/images/leagues/ncaab/student-section.jpg",
	},
	"mlb": {
		"/images/leagues/mlb/diamond.jpg",
		"/images/leagues/mlb/dugout.jpg",
		"/images/leagues/mlb/bullpen.jpg",
	},
	"nhl": {
		"/images/leagues/nhl/faceoff.jpg",
		"/images/leagues/nhl/rink.jpg",
	},
}

const defaultEventImage = "/images/leagues/default.jpg"

// ImagePicker returns an index in [0, n)
type ImagePicker func(n int) int

// RandomImage picks pseudo-randomly from the pool
func RandomImage(n int) int {
	return rand.Intn(n)
}

// PickEventImage selects a hero image for a newly created event
func PickEventImage(sportKey string, pick ImagePicker) string {
	league, ok := LeagueForSportKey(sportKey)
	if !ok {
		return defaultEventImage
	}
	pool := leagueImages[league.Name]
	if len(pool) == 0 {
		return defaultEventImage
	}
	if pick == nil {
		pick = RandomImage
	}
	return pool[pick(len(pool))]
}
