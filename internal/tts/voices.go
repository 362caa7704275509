package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Voice describes one synthesis voice offered by the service.
type Voice struct {
	Name           string `json:"Name"`
	ShortName      string `json:"ShortName"`
	Gender         string `json:"Gender"`
	Locale         string `json:"Locale"`
	FriendlyName   string `json:"FriendlyName"`
	SuggestedCodec string `json:"SuggestedCodec"`
}

var voicesClient = &http.Client{Timeout: 15 * time.Second}

// ListVoices fetches the full voice catalog.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, voicesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build voices request: %w", err)
	}

	resp, err := voicesClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices endpoint returned status %d", resp.StatusCode)
	}

	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return voices, nil
}

// FilterByLocale returns the voices whose short name starts with the given
// locale prefix, e.g. "es-".
func FilterByLocale(voices []Voice, prefix string) []Voice {
	filtered := make([]Voice, 0)
	for _, v := range voices {
		if strings.HasPrefix(v.ShortName, prefix) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
