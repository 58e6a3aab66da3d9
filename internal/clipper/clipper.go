package clipper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"uni-meal-planner/internal/catalog"
)

// Clipper imports food composition tables from web pages into catalog
// entries.
type Clipper struct {
	client *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper() *Clipper {
	return &Clipper{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// columnAliases maps the header spellings seen in the wild onto catalog
// fields. Headers are normalized before lookup, so "Energy (kcal)" and
// "kcal per 100g" both land on kcal.
var columnAliases = map[string]string{
	"food": "name", "name": "name", "item": "name", "product": "name",
	"kcal": "kcal", "calories": "kcal", "energy": "kcal",
	"carbs": "carbs", "carb": "carbs", "carbohydrate": "carbs", "carbohydrates": "carbs",
	"protein": "protein", "proteins": "protein",
	"fat": "fat", "fats": "fat", "lipid": "fat", "lipids": "fat",
	"tags": "tags", "category": "tags", "categories": "tags",
	"allergens": "allergens", "allergen": "allergens",
	"lactosefree": "lactose", "lactose": "lactose",
}

// ClipURL fetches the page and extracts foods from the first table whose
// header carries at least a food name and a calorie column.
func (c *Clipper) ClipURL(ctx context.Context, url string) ([]catalog.Food, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var foods []catalog.Food
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		extracted := c.extractTable(table)
		if extracted != nil {
			foods = extracted
			return false
		}
		return true
	})

	if foods == nil {
		return nil, fmt.Errorf("no nutrition table found at %s", url)
	}
	return foods, nil
}

// extractTable parses one table, returning nil when its header does not
// look like nutrition data. Rows that fail to parse are skipped.
func (c *Clipper) extractTable(table *goquery.Selection) []catalog.Food {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	columns := mapHeader(rows.First())
	if columns["name"] < 0 || columns["kcal"] < 0 {
		return nil
	}

	foods := []catalog.Food{}
	rows.Slice(1, rows.Length()).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		cell := func(field string) string {
			idx := columns[field]
			if idx < 0 || idx >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(idx).Text())
		}

		kcal, ok := parseNumber(cell("kcal"))
		if !ok {
			return
		}
		carbs, _ := parseNumber(cell("carbs"))
		protein, _ := parseNumber(cell("protein"))
		fat, _ := parseNumber(cell("fat"))

		food := catalog.Food{
			Name:           cell("name"),
			KcalPer100g:    kcal,
			CarbsPer100g:   carbs,
			ProteinPer100g: protein,
			FatPer100g:     fat,
			Tags:           splitList(cell("tags")),
			Allergens:      splitList(cell("allergens")),
			LactoseFree:    parseBool(cell("lactose")),
		}
		if err := food.Validate(); err != nil {
			return
		}
		foods = append(foods, food)
	})

	if len(foods) == 0 {
		return nil
	}
	return foods
}

// mapHeader resolves each catalog field to its column index, -1 when the
// table does not carry it. Header cells may be th or td.
func mapHeader(headerRow *goquery.Selection) map[string]int {
	columns := map[string]int{
		"name": -1, "kcal": -1, "carbs": -1, "protein": -1, "fat": -1,
		"tags": -1, "allergens": -1, "lactose": -1,
	}

	cells := headerRow.Find("th")
	if cells.Length() == 0 {
		cells = headerRow.Find("td")
	}
	cells.Each(func(i int, cell *goquery.Selection) {
		field, ok := columnAliases[normalizeHeader(cell.Text())]
		if ok && columns[field] < 0 {
			columns[field] = i
		}
	})
	return columns
}

// normalizeHeader reduces "Energy (kcal)" or "carbs_per_100g" to a bare
// keyword for the alias lookup.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "(/"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.TrimSpace(s)
	for _, suffix := range []string{"per 100g", "per 100 g", "100g", "100 g"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	s = strings.TrimSuffix(s, " per")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimRight(s, "?:.")
}

// parseNumber reads the leading numeric run of a cell, tolerating unit
// suffixes like "370 kcal" and decimal commas.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// splitList turns "breakfast, snack" into tag slices.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToLower(trimmed))
		}
	}
	return out
}

// parseBool reads a yes/no style cell into the tri-state lactose flag,
// nil when the cell is empty or unrecognized.
func parseBool(s string) *bool {
	v := false
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "y", "1":
		v = true
	case "no", "false", "n", "0":
	default:
		return nil
	}
	return &v
}
