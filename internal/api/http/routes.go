package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/krishimitra/crop-scan-backend/internal/agromet"
	"github.com/krishimitra/crop-scan-backend/internal/apperr"
	"github.com/krishimitra/crop-scan-backend/internal/diagnosis"
	"github.com/krishimitra/crop-scan-backend/internal/forecast"
)

var validate = validator.New()

// Services bundles everything the routes call. Interfaces keep the handlers
// testable with fakes.
type Services struct {
	Diagnosis Analyzer
	Weather   WeatherComposer
	Forecast  ForecastFetcher
	Speech    Transcriber
	Translate Translator
	Advisor   Adviser
}

type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*diagnosis.Report, error)
}

type WeatherComposer interface {
	Compose(ctx context.Context, pt agromet.Point) (*agromet.Metrics, error)
}

type ForecastFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) ([]forecast.Day, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type Adviser interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svcs Services) {
	app.Post("/analyze", func(c *fiber.Ctx) error {
		report, err := svcs.Diagnosis.Analyze(c.Context(), c.Body())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		pt, err := parseCoords(c)
		if err != nil {
			return respondError(c, err)
		}

		metrics, err := svcs.Weather.Compose(c.Context(), pt)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(metrics)
	})

	app.Get("/forecast", func(c *fiber.Ctx) error {
		pt, err := parseCoords(c)
		if err != nil {
			return respondError(c, err)
		}

		days, err := svcs.Forecast.Fetch(c.Context(), pt.Lat, pt.Lon)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"forecast": days})
	})

	app.Post("/speech-to-text", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("audio")
		if err != nil {
			return respondError(c, apperr.Validation("Audio file is required"))
		}

		f, err := fh.Open()
		if err != nil {
			return respondError(c, &apperr.StorageError{Op: "open upload", Err: err})
		}
		defer f.Close()

		audio, err := io.ReadAll(f)
		if err != nil {
			return respondError(c, &apperr.StorageError{Op: "read upload", Err: err})
		}

		transcription, err := svcs.Speech.Transcribe(c.Context(), audio)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"transcription": transcription})
	})

	app.Post("/gemini-advice", func(c *fiber.Ctx) error {
		var req adviceRequest
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, apperr.Validation("invalid request body"))
		}
		if err := validate.Struct(req); err != nil {
			return respondError(c, apperr.Validation("text is required"))
		}

		reply, err := svcs.Advisor.Generate(c.Context(), assistantPrompt(req.Text))
		if err != nil {
			var ue *apperr.UpstreamError
			if errors.As(err, &ue) {
				return respondError(c, err)
			}
			// Model answered but produced no text.
			reply = "Gemini didn't reply"
		}
		return c.JSON(fiber.Map{"advice": reply})
	})

	app.Post("/translate", func(c *fiber.Ctx) error {
		var req translateRequest
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, apperr.Validation("invalid request body"))
		}
		if err := validate.Struct(req); err != nil {
			return respondError(c, apperr.Validation("text and targetLanguage are required"))
		}

		translated, err := svcs.Translate.Translate(c.Context(), req.Text, req.TargetLanguage)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"translatedText": translated})
	})
}

type adviceRequest struct {
	Text string `json:"text" validate:"required"`
}

type translateRequest struct {
	Text           string `json:"text" validate:"required"`
	TargetLanguage string `json:"targetLanguage" validate:"required"`
}

// coordsQuery holds the raw lat/lon query parameters for presence checks.
type coordsQuery struct {
	Lat string `validate:"required"`
	Lon string `validate:"required"`
}

func parseCoords(c *fiber.Ctx) (agromet.Point, error) {
	q := coordsQuery{
		Lat: c.Query("lat"),
		Lon: c.Query("lon"),
	}
	if err := validate.Struct(q); err != nil {
		return agromet.Point{}, apperr.Validation("Latitude and Longitude required")
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return agromet.Point{}, apperr.Validation("invalid latitude: %s", q.Lat)
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return agromet.Point{}, apperr.Validation("invalid longitude: %s", q.Lon)
	}

	return agromet.Point{Lat: lat, Lon: lon}, nil
}

func assistantPrompt(text string) string {
	return fmt.Sprintf(`You are a farming assistant. A farmer asked: "%s". Reply in English with concise, practical advice. Use simple language, no bold or italics, and no greetings or introductions.`, text)
}

// respondError maps the error taxonomy onto flat JSON error bodies:
// ValidationError -> 400, everything else -> 500, with the raw upstream body
// attached as details when available.
func respondError(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg})
	}

	var ue *apperr.UpstreamError
	if errors.As(err, &ue) {
		log.Printf("upstream failure: %v", ue)
		body := fiber.Map{"error": fmt.Sprintf("%s request failed", ue.Service)}
		if ue.Body != "" {
			body["details"] = ue.Body
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	var se *apperr.StorageError
	if errors.As(err, &se) {
		log.Printf("storage failure: %v", se)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process uploaded file"})
	}

	log.Printf("request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
