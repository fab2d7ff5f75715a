package domain

// HazardNone is the only hazard value that makes a catalog record eligible for recommendation.
const HazardNone = "none known"

// DefaultRankLimit is the number of remedies returned per symptom.
const DefaultRankLimit = 3

// RemedyRecord is a decoded catalog entry.
type RemedyRecord struct {
	PlantID         string
	CommonName      string
	ScientificName  string
	Uses            []string
	MedicinalRating int
	EdibilityRating int
	Hazards         string
	EdibleUses      string
	ImageURLs       []string
	PlantURL        string
}

// SymptomContext pairs an extracted symptom with its optional cause.
type SymptomContext struct {
	Symptom string
	Context string
}

// PlantInfo is the client-facing projection of a ranked RemedyRecord.
type PlantInfo struct {
	PlantName      string   `json:"plantName"`
	ScientificName string   `json:"scientificName"`
	MedicalRating  int      `json:"medicalRating"`
	EdibleRating   int      `json:"edibleRating"`
	EdibleUses     string   `json:"edibleUses"`
	PlantImageURL  []string `json:"plantImageURL"`
	PlantURL       string   `json:"plantURL"`
}

// RecommendationSet maps each extracted symptom to its ranked remedies (0..limit entries).
type RecommendationSet map[string][]PlantInfo

// Project converts a record into its PlantInfo view. Image URLs are never nil so
// they serialise as [] rather than null.
func (r RemedyRecord) Project() PlantInfo {
	images := r.ImageURLs
	if images == nil {
		images = []string{}
	}
	return PlantInfo{
		PlantName:      r.CommonName,
		ScientificName: r.ScientificName,
		MedicalRating:  r.MedicinalRating,
		EdibleRating:   r.EdibilityRating,
		EdibleUses:     r.EdibleUses,
		PlantImageURL:  images,
		PlantURL:       r.PlantURL,
	}
}

// CatalogDocument is a raw catalog item as returned by a store. The catalog is ingested from
// loosely structured data, so values are untyped until decoded.
type CatalogDocument map[string]any

// Catalog document attribute names.
const (
	CatalogPlantID         = "plant_id"
	CatalogCommonName      = "common_name"
	CatalogLatinName       = "latin_name"
	CatalogUses            = "uses"
	CatalogMedicinalRating = "medicinal_rating"
	CatalogEdibilityRating = "edibility_rating"
	CatalogHazards         = "hazards"
	CatalogEdibleUses      = "edible_uses"
	CatalogImageURLs       = "image_urls"
	CatalogPlantURL        = "plant_url"
)
