package models

// Place is one nearby-search result, augmented with the great-circle
// distance in meters from the search origin and a map link.
type Place struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address"`
	Photo    string  `json:"photo,omitempty"`
	URL      string  `json:"url,omitempty"`
	Distance float64 `json:"distance"`
	Type     string  `json:"type"`
}
