package usecase

import (
	"context"
	"net/url"

	"github.com/medassist-app/medassist/internal/core/domain"
	"github.com/medassist-app/medassist/internal/core/ports"
)

// LocateHospitalsUseCase resolves a free-form address to coordinates and
// builds a maps search link for nearby hospitals.
type LocateHospitalsUseCase struct {
	geocoder ports.Geocoder
}

func NewLocateHospitalsUseCase(geocoder ports.Geocoder) *LocateHospitalsUseCase {
	return &LocateHospitalsUseCase{geocoder: geocoder}
}

func (uc *LocateHospitalsUseCase) Locate(ctx context.Context, address string) (*domain.Coordinates, error) {
	return uc.geocoder.Geocode(ctx, address)
}

// SearchLink returns a Google Maps search URL for hospitals near the given
// place label. The label is whatever the caller wants shown in the query,
// typically the address or "lat,lon".
func (uc *LocateHospitalsUseCase) SearchLink(label string) string {
	return "https://www.google.com/maps/search/" + url.PathEscape("hospitals near "+label)
}
