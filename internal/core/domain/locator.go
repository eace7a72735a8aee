package domain

// Coordinates is a geocoded point for the hospital locator.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
