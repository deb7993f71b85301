package handlers

import (
	"context"
	"net/http"
	"time"

	"linesdesk/ingestion/internal/cache"
	"linesdesk/ingestion/internal/models"
	"linesdesk/ingestion/internal/normalizer"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EventOdds is the read model of one event with its display odds
type EventOdds struct {
	ExternalID   string                  `json:"externalId"`
	League       string                  `json:"league,omitempty"`
	SportTitle   string                  `json:"sportTitle"`
	HomeTeam     string                  `json:"homeTeam"`
	AwayTeam     string                  `json:"awayTeam"`
	CommenceTime time.Time               `json:"commenceTime"`
	ImageURL     string                  `json:"imageUrl,omitempty"`
	Available    bool                    `json:"available"`
	Odds         *normalizer.DisplayOdds `json:"odds,omitempty"`
}

func toEventOdds(event *models.Event) EventOdds {
	view := EventOdds{
		ExternalID:   event.ExternalID,
		SportTitle:   event.SportTitle,
		HomeTeam:     event.HomeTeam,
		AwayTeam:     event.AwayTeam,
		CommenceTime: event.CommenceTime,
		ImageURL:     event.ImageURL,
	}
	if league, ok := models.LeagueForSportKey(event.SportKey); ok {
		view.League = league.Name
	}

	// Missing odds render as an unavailable state, not an error
	view.Odds = normalizer.Normalize(event)
	view.Available = view.Odds != nil
	return view
}

// ListEvents returns upcoming events of a league with display odds
// Query params: league (required), limit
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	league, err := models.LookupLeague(r.URL.Query().Get("league"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	limit := parseIntParam(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	events, err := h.events.ListUpcoming(ctx, league.SportKey, h.now(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve events", err)
		return
	}

	views := make([]EventOdds, 0, len(events))
	for _, e := range events {
		views = append(views, toEventOdds(e))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league": league.Name,
		"events": views,
		"count":  len(views),
	})
}

// GetEventOdds returns one event's display odds, served from cache when warm
func (h *Handler) GetEventOdds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	externalID := chi.URLParam(r, "externalID")
	if externalID == "" {
		respondError(w, http.StatusBadRequest, "externalID is required", nil)
		return
	}

	key := cache.OddsKey(externalID)
	if h.cache != nil {
		var cached EventOdds
		found, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		if found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	event, err := h.events.GetEventGraphByExternalID(ctx, externalID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve event", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found", nil)
		return
	}

	view := toEventOdds(event)
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, view); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, view)
}

// GetEventPrediction returns the event's prediction article or an unavailable state
func (h *Handler) GetEventPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	externalID := chi.URLParam(r, "externalID")
	event, err := h.events.GetEventGraphByExternalID(ctx, externalID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve event", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found", nil)
		return
	}

	pred, err := h.predictions.GetLatestForEvent(ctx, event.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve prediction", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"externalId": event.ExternalID,
		"available":  pred != nil,
		"prediction": pred,
	})
}
