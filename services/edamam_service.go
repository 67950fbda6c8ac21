package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const edamamBaseURL = "https://api.edamam.com/api/food-database/v2"

// EdamamService looks foods up in the Edamam Food Database parser.
type EdamamService struct {
	baseURL       string
	appID, appKey string
	client        *http.Client
}

func NewEdamamService(appID, appKey string, timeout time.Duration) *EdamamService {
	return &EdamamService{
		baseURL: edamamBaseURL,
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the service at another host, e.g. a test server.
func (s *EdamamService) WithBaseURL(u string) *EdamamService {
	s.baseURL = strings.TrimRight(u, "/")
	return s
}

type edamamFood struct {
	FoodID    string             `json:"foodId"`
	Label     string             `json:"label"`
	Category  string             `json:"category"`
	Nutrients map[string]float64 `json:"nutrients"`
}

type foodParserResponse struct {
	Parsed []struct {
		Food edamamFood `json:"food"`
	} `json:"parsed"`
	Hints []struct {
		Food edamamFood `json:"food"`
	} `json:"hints"`
}

func (s *EdamamService) Name() string { return "Edamam" }

// Lookup uses the parsed match when Edamam found one, else the first hint.
// Values are per 100 g.
func (s *EdamamService) Lookup(ctx context.Context, food string) (Macros, error) {
	u := fmt.Sprintf("%s/parser?ingr=%s&app_id=%s&app_key=%s",
		s.baseURL, url.QueryEscape(food), url.QueryEscape(s.appID), url.QueryEscape(s.appKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to create Edamam request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to call Edamam parser: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to read Edamam parser response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Macros{}, fmt.Errorf("edamam parser API error %d: %s", resp.StatusCode, string(body))
	}

	var pr foodParserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return Macros{}, fmt.Errorf("failed to parse Edamam parser JSON: %w", err)
	}

	var f *edamamFood
	switch {
	case len(pr.Parsed) > 0:
		f = &pr.Parsed[0].Food
	case len(pr.Hints) > 0:
		f = &pr.Hints[0].Food
	default:
		return Macros{}, fmt.Errorf("%w: %q in Edamam", ErrFoodNotFound, food)
	}

	return Macros{
		Calories: int(f.Nutrients["ENERC_KCAL"]),
		Protein:  round1(f.Nutrients["PROCNT"]),
		Carbs:    round1(f.Nutrients["CHOCDF"]),
		Fats:     round1(f.Nutrients["FAT"]),
	}, nil
}
