package domain

// TravelTimeRow is one row of the P/S-wave travel-time table, spec §3.
type TravelTimeRow struct {
	DepthKM    int
	DistanceKM float64
	PTimeS     float64
	STimeS     float64
}
