package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// MaxImageBytes caps uploaded donation and profile images.
const MaxImageBytes = 5 << 20

// DonationServiceInterface defines the interface for donation business logic.
type DonationServiceInterface interface {
	Create(ctx context.Context, req *model.CreateDonationRequest, image *service.ImageUpload) (*model.Donation, error)
	Search(ctx context.Context, q model.Query) ([]model.Donation, error)
	Get(ctx context.Context, id int64) (*model.DonationDetails, error)
}

// DonationHandler handles HTTP requests for posting, searching and viewing donations.
type DonationHandler struct {
	service   DonationServiceInterface
	validator *validator.Validate
}

// NewDonationHandler creates a new DonationHandler with the given service and validator.
func NewDonationHandler(svc DonationServiceInterface, v *validator.Validate) *DonationHandler {
	return &DonationHandler{service: svc, validator: v}
}

// SearchDonations handles GET /food-donations.
func (h *DonationHandler) SearchDonations(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return badRequest(c, "invalid request: "+err.Error())
	}

	donations, err := h.service.Search(c.Context(), q)
	if err != nil {
		return respondError(c, err, "failed to search donations")
	}
	return c.JSON(donations)
}

// parseQuery reads the search filters. Blank parameters count as absent.
func parseQuery(c *fiber.Ctx) (model.Query, error) {
	q := model.Query{SearchText: strings.TrimSpace(c.Query("searchQuery"))}

	for _, cat := range strings.Split(c.Query("category"), ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			q.Categories = append(q.Categories, cat)
		}
	}

	lat, err := optionalFloat(c, "latitude")
	if err != nil {
		return q, err
	}
	lon, err := optionalFloat(c, "longitude")
	if err != nil {
		return q, err
	}
	if (lat == nil) != (lon == nil) {
		return q, errors.New("latitude and longitude must be provided together")
	}
	if lat != nil {
		q.Origin = &model.Coordinate{Lat: *lat, Lon: *lon}
	}

	if q.RadiusKm, err = optionalFloat(c, "radius"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// GetDonation handles GET /food-donations/:id.
func (h *DonationHandler) GetDonation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	details, err := h.service.Get(c.Context(), int64(id))
	if err != nil {
		return respondError(c, err, "failed to get donation")
	}
	return c.JSON(details)
}

// CreateDonation handles POST /food-donation (multipart form with an optional image).
func (h *DonationHandler) CreateDonation(c *fiber.Ctx) error {
	var req model.CreateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	image, closeImage, err := imageFromForm(c, "image")
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer closeImage()

	donation, err := h.service.Create(c.Context(), &req, image)
	if err != nil {
		return respondError(c, err, "failed to create donation")
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("donation_id", donation.ID).
		Int64("user_id", donation.UserID).
		Bool("has_image", donation.ImageURL != nil).
		Msg("donation created")

	return c.Status(fiber.StatusCreated).JSON(donation)
}

// imageFromForm opens the optional multipart file field. It returns a nil upload when the field
// is absent. The returned close func is always safe to call.
func imageFromForm(c *fiber.Ctx, field string) (*service.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("invalid request: could not read %s", field)
	}
	if fh.Size > MaxImageBytes {
		return nil, noop, fmt.Errorf("invalid request: %s exceeds %d MB", field, MaxImageBytes>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("invalid request: could not read %s", field)
	}

	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
