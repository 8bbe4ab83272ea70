package analytics

// Alternative is a cheaper place suggested near a coordinate.
type Alternative struct {
	Name             string
	Lat              float64
	Lon              float64
	EstSavingPercent int
}

// NearbyAlternatives returns placeholder suggestions at fixed offsets from the
// given point. It stands in for a places lookup.
func NearbyAlternatives(lat, lon float64) []Alternative {
	return []Alternative{
		{Name: "Budget Mart", Lat: lat + 0.01, Lon: lon + 0.01, EstSavingPercent: 30},
		{Name: "Discount Bazaar", Lat: lat - 0.007, Lon: lon + 0.004, EstSavingPercent: 20},
	}
}
