package agromet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/krishimitra/crop-scan-backend/internal/advice"
	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

// Service composes the /weather response: three independent satellite-metric
// aggregations followed by one advice-generation call over their values.
type Service struct {
	metrics MetricSource
	advisor Adviser
}

// NewService creates a new Service.
func NewService(metrics MetricSource, advisor Adviser) *Service {
	return &Service{
		metrics: metrics,
		advisor: advisor,
	}
}

// Compose runs the three metric queries concurrently, formats the scalars,
// and asks the advice model for bilingual guidance. A branch with no data
// yields the NoData sentinel for its field only; advice failure degrades to
// the fallback strings. Only all three branches hard-failing aborts the
// request.
func (s *Service) Compose(ctx context.Context, pt Point) (*Metrics, error) {
	branches := []struct {
		name   string
		fetch  func(context.Context, Point) (float64, error)
		suffix string
	}{
		{name: "ndvi", fetch: s.metrics.NDVI},
		{name: "soil_moisture_top", fetch: s.metrics.SoilMoistureTop},
		{name: "rainfall", fetch: s.metrics.Rainfall, suffix: " mm"},
	}

	values := make([]string, len(branches))
	hardErrs := make([]error, len(branches))

	var wg sync.WaitGroup
	for i, b := range branches {
		wg.Add(1)
		go func(i int, name string, fetch func(context.Context, Point) (float64, error), suffix string) {
			defer wg.Done()

			v, err := fetch(ctx, pt)
			if err != nil {
				if !errors.Is(err, ErrNoData) {
					log.Printf("agromet: %s query failed for (%g, %g): %v", name, pt.Lat, pt.Lon, err)
					hardErrs[i] = err
				}
				values[i] = NoData
				return
			}
			values[i] = fmt.Sprintf("%.4f", v) + suffix
		}(i, b.name, b.fetch, b.suffix)
	}
	wg.Wait()

	if hardErrs[0] != nil && hardErrs[1] != nil && hardErrs[2] != nil {
		return nil, &apperr.UpstreamError{Service: "earth-engine", Err: hardErrs[0]}
	}

	out := &Metrics{
		NDVI:            values[0],
		SoilMoistureTop: values[1],
		Rainfall:        values[2],
		Advice: advice.Bilingual{
			English: advice.FallbackEnglish,
			Hindi:   advice.FallbackHindi,
		},
	}

	text, err := s.advisor.Generate(ctx, advicePrompt(out.Rainfall, out.NDVI, out.SoilMoistureTop))
	if err != nil {
		// Advice is best-effort; the metrics still go out with fallbacks.
		log.Printf("agromet: advice generation failed: %v", err)
		return out, nil
	}
	out.Advice = advice.ParseBilingual(text)

	return out, nil
}

func advicePrompt(rainfall, ndvi, soilMoisture string) string {
	return fmt.Sprintf(`Given the following weather conditions:
- Rainfall: %s
- NDVI: %s
- Soil Moisture (Top 0-7cm): %s

Provide farming advice in Hindi first, followed by English.

1. Explain how these weather conditions affect farming.
2. Suggest suitable crops based on the data.
3. Warn about potential crop diseases.
4. Keep the response clear, farmer-friendly, and practical.
5. Avoid unnecessary introductions.
6. No bold or italic formatting.

Answer with a "Hindi:" section followed by an "English:" section.`, rainfall, ndvi, soilMoisture)
}
