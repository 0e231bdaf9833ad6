package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/krishimitra/crop-scan-backend/internal/agromet"
	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

const eeScope = "https://www.googleapis.com/auth/earthengine"

// EarthEngine implements agromet.MetricSource against the Earth Engine REST
// API, authorized by a service-account JWT. Each metric is one value:compute
// call: load collection, filter by bounds and a fixed date window, take the
// collection mean, and reduce over the point at the dataset's native scale.
type EarthEngine struct {
	client      *http.Client
	tokenSource oauth2.TokenSource
	baseURL     string
	project     string
}

// NewEarthEngine builds the adapter from the raw service-account blob.
// Call Authenticate before serving traffic; a bad credential is fatal.
func NewEarthEngine(ctx context.Context, serviceAccountJSON []byte, project string) (*EarthEngine, error) {
	jwtCfg, err := google.JWTConfigFromJSON(serviceAccountJSON, eeScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	ts := jwtCfg.TokenSource(ctx)
	return &EarthEngine{
		client:      oauth2.NewClient(ctx, ts),
		tokenSource: ts,
		baseURL:     "https://earthengine.googleapis.com/v1",
		project:     project,
	}, nil
}

// Authenticate fetches a first access token so credential problems surface
// at startup instead of on the first /weather request.
func (p *EarthEngine) Authenticate(ctx context.Context) error {
	if _, err := p.tokenSource.Token(); err != nil {
		return fmt.Errorf("earth engine authentication failed: %w", err)
	}
	return nil
}

// datasetQuery describes one fixed aggregation: which collection, which
// window, which band, and the spatial scale in meters.
type datasetQuery struct {
	collection string
	start, end string
	band       string
	scale      float64

	// normalizedDiff, when set, derives the band from the mean image via
	// normalizedDifference over these two input bands (NDVI).
	normalizedDiff []string
}

func (p *EarthEngine) NDVI(ctx context.Context, pt agromet.Point) (float64, error) {
	return p.computeMean(ctx, pt, datasetQuery{
		collection:     "LANDSAT/LC08/C02/T1_TOA",
		start:          "2024-01-25",
		end:            "2024-03-05",
		band:           "NDVI",
		scale:          30,
		normalizedDiff: []string{"B5", "B4"},
	})
}

func (p *EarthEngine) SoilMoistureTop(ctx context.Context, pt agromet.Point) (float64, error) {
	return p.computeMean(ctx, pt, datasetQuery{
		collection: "NASA/SMAP/SPL3SMP_E/006",
		start:      "2024-01-28",
		end:        "2024-03-02",
		band:       "soil_moisture_am",
		scale:      9000,
	})
}

func (p *EarthEngine) Rainfall(ctx context.Context, pt agromet.Point) (float64, error) {
	return p.computeMean(ctx, pt, datasetQuery{
		collection: "UCSB-CHG/CHIRPS/DAILY",
		start:      "2024-03-01",
		end:        "2024-03-02",
		band:       "precipitation",
		scale:      5000,
	})
}

func (p *EarthEngine) computeMean(ctx context.Context, pt agromet.Point, q datasetQuery) (float64, error) {
	point := invoke("GeometryConstructors.Point", args{
		"coordinates": constant([]float64{pt.Lon, pt.Lat}),
	})

	ic := invoke("ImageCollection.load", args{"id": constant(q.collection)})
	ic = invoke("Collection.filter", args{
		"collection": ic,
		"filter": invoke("Filter.intersects", args{
			"leftField":  constant(".all"),
			"rightValue": invoke("Feature", args{"geometry": point}),
		}),
	})
	ic = invoke("Collection.filter", args{
		"collection": ic,
		"filter": invoke("Filter.date", args{
			"start": constant(q.start),
			"end":   constant(q.end),
		}),
	})

	img := invoke("reduce.mean", args{"collection": ic})
	if len(q.normalizedDiff) == 2 {
		img = invoke("Image.normalizedDifference", args{
			"input":     img,
			"bandNames": constant(q.normalizedDiff),
		})
		img = invoke("Image.rename", args{
			"input": img,
			"names": constant([]string{q.band}),
		})
	}

	result := invoke("Image.reduceRegion", args{
		"image":     img,
		"reducer":   invoke("Reducer.mean", args{}),
		"geometry":  point,
		"scale":     constant(q.scale),
		"maxPixels": constant(1e9),
	})

	body, err := json.Marshal(map[string]any{
		"expression": map[string]any{
			"result": "0",
			"values": map[string]*valueNode{"0": result},
		},
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/projects/%s/value:compute", p.baseURL, p.project)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, &apperr.UpstreamError{Service: "earth-engine", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return 0, &apperr.UpstreamError{
			Service: "earth-engine",
			Status:  resp.StatusCode,
			Body:    string(raw),
		}
	}

	var payload struct {
		Result map[string]*float64 `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, &apperr.UpstreamError{Service: "earth-engine", Err: fmt.Errorf("decode response: %w", err)}
	}

	// An empty collection reduces to a null band value.
	v, ok := payload.Result[q.band]
	if !ok || v == nil {
		return 0, agromet.ErrNoData
	}
	return *v, nil
}

// valueNode is one node of an Earth Engine expression graph: either a
// constant or a function invocation over named arguments. Declaring the
// shape here keeps speculative deep JSON access out of the rest of the code.
type valueNode struct {
	ConstantValue           any           `json:"constantValue,omitempty"`
	FunctionInvocationValue *functionCall `json:"functionInvocationValue,omitempty"`
}

type functionCall struct {
	FunctionName string                `json:"functionName"`
	Arguments    map[string]*valueNode `json:"arguments"`
}

type args map[string]*valueNode

func constant(v any) *valueNode {
	return &valueNode{ConstantValue: v}
}

func invoke(name string, a args) *valueNode {
	return &valueNode{FunctionInvocationValue: &functionCall{
		FunctionName: name,
		Arguments:    a,
	}}
}
