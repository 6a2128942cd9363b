package twitter

import "encoding/json"

// unifiedCard is the JSON document stored in a card's unified_card binding.
type unifiedCard struct {
	Type             string `json:"type"`
	ComponentObjects map[string]struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"component_objects"`
	MediaEntities map[string]MediaEntity `json:"media_entities"`
}

// cardMedia returns the primary media entity of a website-embed card, or
// nil when the card is absent, unparseable or of another kind.
func cardMedia(card *Card) *MediaEntity {
	if card == nil || card.Legacy == nil || len(card.Legacy.BindingValues) == 0 {
		return nil
	}

	bindings := card.Legacy.BindingValues
	raw := bindings[0].Value.StringValue
	for _, bv := range bindings {
		if bv.Key == "unified_card" {
			raw = bv.Value.StringValue
			break
		}
	}
	if raw == "" {
		return nil
	}

	var uc unifiedCard
	if err := json.Unmarshal([]byte(raw), &uc); err != nil {
		return nil
	}
	if uc.Type != "video_website" && uc.Type != "image_website" {
		return nil
	}

	primary, ok := uc.ComponentObjects["media_1"]
	if !ok || primary.Type != "media" || primary.Data.ID == "" {
		return nil
	}
	entity, ok := uc.MediaEntities[primary.Data.ID]
	if !ok {
		return nil
	}
	return &entity
}
