package ai

import (
	"fmt"
	"strconv"
	"strings"

	"linesdesk/ingestion/internal/models"
)

// SystemPrompt sets the analyst persona for every prediction request
const SystemPrompt = "You are an experienced sports-betting analyst who writes clear, balanced game previews " +
	"for a sports blog. Base every claim on the odds provided and never promise outcomes."

// SerializeEvent renders an event graph as compact text for the user prompt
func SerializeEvent(event *models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s @ %s | start %s\n",
		event.SportTitle, event.AwayTeam, event.HomeTeam,
		event.CommenceTime.UTC().Format("2006-01-02 15:04 MST"))

	for _, bm := range event.Bookmakers {
		fmt.Fprintf(&b, "%s:", bm.Title)
		for _, m := range bm.Markets {
			fmt.Fprintf(&b, " %s[", m.Key)
			for i, o := range m.Outcomes {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(o.Name)
				if o.Point != nil {
					b.WriteString(" ")
					b.WriteString(strconv.FormatFloat(*o.Point, 'f', -1, 64))
				}
				b.WriteString(" ")
				b.WriteString(formatPrice(o.Price))
			}
			b.WriteString("]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// UserPrompt builds the per-event request including the required label grammar
func UserPrompt(event *models.Event) string {
	var b strings.Builder
	b.WriteString("Write a prediction article for this game using the odds snapshot below.\n\n")
	b.WriteString(SerializeEvent(event))
	b.WriteString("\nRespond using exactly these labels, in this order, each followed by plain text:\n")
	b.WriteString(OutputFormat())
	return b.String()
}

func formatPrice(price int) string {
	if price > 0 {
		return "+" + strconv.Itoa(price)
	}
	return strconv.Itoa(price)
}
