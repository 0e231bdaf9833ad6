package agromet

import "github.com/krishimitra/crop-scan-backend/internal/advice"

// NoData is the sentinel used for any metric whose dataset had no
// observations for the queried point and window.
const NoData = "No Data"

// Point is a caller-supplied geographic coordinate. No validation beyond
// presence happens upstream; values are forwarded as-is.
type Point struct {
	Lat float64
	Lon float64
}

// Metrics is the /weather response: three formatted scalars (or the NoData
// sentinel) plus bilingual farming advice derived from them.
type Metrics struct {
	NDVI            string           `json:"ndvi"`
	SoilMoistureTop string           `json:"soil_moisture_top"`
	Rainfall        string           `json:"rainfall"`
	Advice          advice.Bilingual `json:"advice"`
}
