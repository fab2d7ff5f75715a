package ranking

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/herbal-remedy-api/internal/domain"
)

// Decode converts a raw catalog document into a RemedyRecord. It never fails:
// missing or malformed ratings become 0, and unusable image or use fields become empty.
func Decode(doc domain.CatalogDocument) domain.RemedyRecord {
	return domain.RemedyRecord{
		PlantID:         stringOf(doc[domain.CatalogPlantID]),
		CommonName:      stringOf(doc[domain.CatalogCommonName]),
		ScientificName:  stringOf(doc[domain.CatalogLatinName]),
		Uses:            splitList(doc[domain.CatalogUses], ";,"),
		MedicinalRating: ratingOf(doc[domain.CatalogMedicinalRating]),
		EdibilityRating: ratingOf(doc[domain.CatalogEdibilityRating]),
		Hazards:         stringOf(doc[domain.CatalogHazards]),
		EdibleUses:      stringOf(doc[domain.CatalogEdibleUses]),
		ImageURLs:       splitList(doc[domain.CatalogImageURLs], ";"),
		PlantURL:        stringOf(doc[domain.CatalogPlantURL]),
	}
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func ratingOf(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		return floatRating(float64(t))
	case float64:
		return floatRating(t)
	case json.Number:
		return stringRating(t.String())
	case string:
		return stringRating(t)
	default:
		return 0
	}
}

func floatRating(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func stringRating(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatRating(f)
	}
	return 0
}

// splitList handles the three shapes list fields arrive in: a string delimited by any rune
// in seps, a list of strings, or anything else (treated as empty). Image URLs may carry
// commas, so only uses split on them.
func splitList(v any, seps string) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, part := range strings.FieldsFunc(t, func(r rune) bool { return strings.ContainsRune(seps, r) }) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
