package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *aqi.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/calculate", func(c *fiber.Ctx) error {
		var req calculateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.CalculateManual(c.Context(), req.toReadings(), req.Source)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store record")
		}
		return c.JSON(rec)
	})

	v1.Get("/fetch", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "please provide ?city=<city name>")
		}

		rec, err := service.FetchCity(c.Context(), city)
		if err != nil {
			return fetchError(city, err)
		}
		return c.JSON(rec)
	})

	v1.Get("/records", func(c *fiber.Ctx) error {
		var req recordsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := service.Records(c.Context(), aqi.Filter{
			Source: req.Source,
			Limit:  req.Limit,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch records")
		}
		if records == nil {
			records = []aqi.Record{}
		}
		return c.JSON(records)
	})
}

func fetchError(city string, err error) error {
	switch {
	case errors.Is(err, aqi.ErrTargetNotFound):
		return fiber.NewError(fiber.StatusNotFound, "could not geocode city: "+city)
	case aqi.IsConfigError(err):
		return fiber.NewError(fiber.StatusServiceUnavailable, "fetch adapter not configured")
	case errors.Is(err, aqi.ErrNoData):
		return fiber.NewError(fiber.StatusBadGateway, "no air pollution data available")
	default:
		var ue *aqi.UpstreamError
		if errors.As(err, &ue) {
			return fiber.NewError(fiber.StatusBadGateway, "upstream provider failure")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store record")
	}
}

// calculateRequest is the manual-submission body. Absent pollutants stay
// null; the computation treats them as not measured, never as zero.
type calculateRequest struct {
	PM25   *float64 `json:"pm25"`
	PM10   *float64 `json:"pm10"`
	CO     *float64 `json:"co"`
	NO2    *float64 `json:"no2"`
	SO2    *float64 `json:"so2"`
	O3     *float64 `json:"o3"`
	NH3    *float64 `json:"nh3"`
	PB     *float64 `json:"pb"`
	Source string   `json:"source" validate:"omitempty,max=128"`
}

func (r calculateRequest) toReadings() aqi.Readings {
	return aqi.Readings{
		aqi.PM25: r.PM25,
		aqi.PM10: r.PM10,
		aqi.CO:   r.CO,
		aqi.NO2:  r.NO2,
		aqi.SO2:  r.SO2,
		aqi.O3:   r.O3,
		aqi.NH3:  r.NH3,
		aqi.PB:   r.PB,
	}
}

// recordsQuery holds query parameters for the records endpoint.
type recordsQuery struct {
	Source string `validate:"omitempty,max=128"`
	Limit  int    `validate:"gte=0,lte=1000"`
}

func (q *recordsQuery) bind(c *fiber.Ctx) error {
	q.Source = c.Query("source")

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		q.Limit = limit
	}
	return nil
}
