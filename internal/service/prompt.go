package service

import (
	"fmt"
	"strings"

	"propmap/internal/model"
)

// buildSystemPrompt generates the AI-mode system prompt: assistant persona
// plus a compact inventory of the listings and POIs so the model can answer
// without tool access. The active property, when set, is called out so the
// model keeps using it as the spatial anchor.
func buildSystemPrompt(dataset *model.Dataset, active *model.Listing) string {
	var b strings.Builder

	b.WriteString(`You are a real estate map assistant. You help the user explore property listings and nearby points of interest.

Rules:
- Answer only from the property and POI data below.
- When the user picks a property, confirm it by name.
- When you list nearby places, state how many you found, e.g. "I found 3 coffee shops near Harborview Lofts".
- Keep answers short; the map UI shows the details.

Properties:
`)

	for _, l := range dataset.Listings {
		fmt.Fprintf(&b, "- %s | %s | %s | %.0f sqft | built %d | %s | features: %s\n",
			l.Name, l.Address, formatPrice(l.Price), l.SizeSqft, l.YearBuilt, l.Type,
			strings.Join(l.Features, ", "))
	}

	b.WriteString("\nPoints of interest:\n")
	for _, p := range dataset.POIs {
		fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Type)
	}

	if active != nil {
		fmt.Fprintf(&b, "\nThe user is currently looking at: %s\n", active.Name)
	}

	return b.String()
}

// buildMessages assembles the message sequence for the completion boundary:
// system prompt, the last historyWindow turns, then the new utterance.
func buildMessages(dataset *model.Dataset, active *model.Listing, history []model.ChatTurn, utterance string, historyWindow int) []ChatMessage {
	messages := []ChatMessage{
		{Role: model.RoleSystem, Content: buildSystemPrompt(dataset, active)},
	}

	start := 0
	if historyWindow > 0 && len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Text})
	}

	messages = append(messages, ChatMessage{Role: model.RoleUser, Content: utterance})
	return messages
}
