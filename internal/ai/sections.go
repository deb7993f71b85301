package ai

import (
	"strings"

	"linesdesk/ingestion/internal/models"
)

// Field is one labeled section of a completion. Text runs from Label up to
// Next; an empty Next means the field runs to the end of the text.
type Field struct {
	Name  string
	Label string
	Next  string
}

// Extract returns the trimmed text between label and next. A missing label
// yields "". A missing next label yields everything after label.
func Extract(text, label, next string) string {
	start := strings.Index(text, label)
	if start < 0 {
		return ""
	}
	start += len(label)

	rest := text[start:]
	if next != "" {
		if end := strings.Index(rest, next); end >= 0 {
			rest = rest[:end]
		}
	}
	return strings.TrimSpace(rest)
}

// Scan extracts every field in order, keyed by Field.Name
func Scan(text string, fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = Extract(text, f.Label, f.Next)
	}
	return out
}

// Section keys of a prediction article
const (
	SectionGameOverview = "game-overview"
	SectionHomeAnalysis = "home-team-analysis"
	SectionAwayAnalysis = "away-team-analysis"
	SectionBetting      = "betting-insight"
	SectionPrediction   = "final-prediction"
)

// sectionOrder is the order sections appear in the completion and the article
var sectionOrder = []string{
	SectionGameOverview,
	SectionHomeAnalysis,
	SectionAwayAnalysis,
	SectionBetting,
	SectionPrediction,
}

const titleLabel = "article-title:"

func headingLabel(key string) string     { return key + "-heading:" }
func descriptionLabel(key string) string { return key + "-description:" }

// PredictionFields is the label grammar the prompt asks the model to follow
var PredictionFields = buildPredictionFields()

func buildPredictionFields() []Field {
	labels := []string{titleLabel}
	for _, key := range sectionOrder {
		labels = append(labels, headingLabel(key), descriptionLabel(key))
	}

	fields := make([]Field, 0, len(labels))
	for i, label := range labels {
		next := ""
		if i+1 < len(labels) {
			next = labels[i+1]
		}
		fields = append(fields, Field{
			Name:  strings.TrimSuffix(label, ":"),
			Label: label,
			Next:  next,
		})
	}
	return fields
}

// ParsePrediction turns a completion into an (unsaved) prediction for eventID
func ParsePrediction(eventID int64, text string) *models.EventPrediction {
	values := Scan(text, PredictionFields)

	pred := &models.EventPrediction{
		EventID: eventID,
		Title:   values[strings.TrimSuffix(titleLabel, ":")],
	}
	for _, key := range sectionOrder {
		pred.Sections = append(pred.Sections, models.PredictionSection{
			Key:         key,
			Heading:     values[strings.TrimSuffix(headingLabel(key), ":")],
			Description: values[strings.TrimSuffix(descriptionLabel(key), ":")],
		})
	}
	return pred
}

// OutputFormat renders the label grammar for the user prompt
func OutputFormat() string {
	var b strings.Builder
	for _, f := range PredictionFields {
		b.WriteString(f.Label)
		b.WriteString(" <text>\n")
	}
	return b.String()
}
