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

const kJPerKcal = 4.184

// USDAService searches USDA FoodData Central.
type USDAService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewUSDAService(baseURL, apiKey string, timeout time.Duration) *USDAService {
	return &USDAService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type usdaSearchResponse struct {
	Foods []struct {
		FdcID         int    `json:"fdcId"`
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			UnitName     string  `json:"unitName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

func (s *USDAService) Name() string { return "USDA" }

// Lookup reads energy and macros from the best search hit.
func (s *USDAService) Lookup(ctx context.Context, food string) (Macros, error) {
	q := url.Values{}
	q.Set("query", food)
	q.Set("pageSize", "1")
	q.Set("api_key", s.apiKey)
	u := s.baseURL + "/foods/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to create USDA request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to call USDA search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Macros{}, fmt.Errorf("failed to read USDA response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Macros{}, fmt.Errorf("USDA search API error %d: %s", resp.StatusCode, string(body))
	}

	var sr usdaSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return Macros{}, fmt.Errorf("failed to parse USDA JSON: %w", err)
	}
	if len(sr.Foods) == 0 {
		return Macros{}, fmt.Errorf("%w: %q in USDA", ErrFoodNotFound, food)
	}

	var m Macros
	haveKcal := false
	for _, n := range sr.Foods[0].FoodNutrients {
		switch n.NutrientName {
		case "Energy":
			switch strings.ToUpper(n.UnitName) {
			case "KCAL":
				m.Calories = int(n.Value)
				haveKcal = true
			default:
				// kJ, or no unit at all
				if !haveKcal {
					m.Calories = int(n.Value / kJPerKcal)
				}
			}
		case "Protein":
			m.Protein = round1(n.Value)
		case "Carbohydrate, by difference":
			m.Carbs = round1(n.Value)
		case "Total lipid (fat)":
			m.Fats = round1(n.Value)
		}
	}
	return m, nil
}
