// Package ingest converts a plant catalog CSV export into catalog documents.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/herbal-remedy-api/internal/domain"
	"github.com/herbal-remedy-api/internal/pkg/id"
)

// CSV column names of the catalog export.
const (
	colCommonName      = "common_name_search"
	colLatinName       = "latin_name_search"
	colUse             = "use_keyword"
	colMedicinalRating = "medicinal_rating_search"
	colEdibilityRating = "edibility_rating_search"
	colHazards         = "Known Hazards"
	colEdibleUses      = "Edible Uses"
	colImageURLs       = "Image URLs"
	colPlantURL        = "plant_url"
)

// Sink receives parsed documents.
type Sink interface {
	PutBatch(ctx context.Context, docs []domain.CatalogDocument) error
}

// Result summarizes one parse.
type Result struct {
	Docs    []domain.CatalogDocument
	Rows    int
	Skipped int
}

// Parse reads the CSV and merges rows that share a latin name: use keywords are unioned in
// first-seen order and every other field keeps its first non-empty value.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{colLatinName, colUse} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	res := &Result{}
	byLatin := make(map[string]domain.CatalogDocument)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		res.Rows++
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		latin := field(colLatinName)
		if latin == "" {
			res.Skipped++
			slog.Debug("skipping row without latin name", "line", line)
			continue
		}
		key := strings.ToLower(latin)
		doc, seen := byLatin[key]
		if !seen {
			doc = domain.CatalogDocument{
				domain.CatalogPlantID:   id.New(),
				domain.CatalogLatinName: latin,
				domain.CatalogUses:      []string{},
			}
			byLatin[key] = doc
			res.Docs = append(res.Docs, doc)
		}
		doc[domain.CatalogUses] = mergeUses(doc[domain.CatalogUses].([]string), field(colUse))
		setFirst(doc, domain.CatalogCommonName, field(colCommonName))
		setFirst(doc, domain.CatalogHazards, field(colHazards))
		setFirst(doc, domain.CatalogEdibleUses, field(colEdibleUses))
		setFirst(doc, domain.CatalogImageURLs, field(colImageURLs))
		setFirst(doc, domain.CatalogPlantURL, field(colPlantURL))
		setRating(doc, domain.CatalogMedicinalRating, field(colMedicinalRating))
		setRating(doc, domain.CatalogEdibilityRating, field(colEdibilityRating))
	}
	return res, nil
}

// Load parses r and writes the documents to sink in batches of batchSize.
func Load(ctx context.Context, r io.Reader, sink Sink, batchSize int) (*Result, error) {
	res, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	for start := 0; start < len(res.Docs); start += batchSize {
		end := min(start+batchSize, len(res.Docs))
		if err := sink.PutBatch(ctx, res.Docs[start:end]); err != nil {
			return nil, fmt.Errorf("write batch at %d: %w", start, err)
		}
		slog.Info("catalog batch written", "written", end, "total", len(res.Docs))
	}
	return res, nil
}

func mergeUses(existing []string, raw string) []string {
	for _, u := range strings.Split(raw, ";") {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		dup := false
		for _, e := range existing {
			if strings.EqualFold(e, u) {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, u)
		}
	}
	return existing
}

func setFirst(doc domain.CatalogDocument, key, value string) {
	if value == "" {
		return
	}
	if cur, ok := doc[key].(string); ok && cur != "" {
		return
	}
	doc[key] = value
}

// setRating stores an integer rating, keeping unparsable values as raw text for the
// ranking decoder to coerce.
func setRating(doc domain.CatalogDocument, key, value string) {
	if value == "" {
		return
	}
	if _, ok := doc[key]; ok {
		return
	}
	if n, err := strconv.Atoi(value); err == nil {
		doc[key] = n
		return
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		doc[key] = int(f)
		return
	}
	doc[key] = value
}
