package rescue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/models"
)

var (
	ErrMissingFields      = errors.New("please fill in all required fields")
	ErrNoValidItems       = errors.New("please add at least one valid item")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidCapacity    = errors.New("capacity must be a positive number")
	ErrInvalidPriority    = errors.New("priority must be high, medium or low")
	ErrInvalidEmail       = errors.New("invalid email format")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// checkStruct runs tag validation. Any missing field wins over other
// failures so the form reports one consistent message.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return ErrMissingFields
		}
	}
	switch fe := verrs[0]; fe.Field() {
	case "Capacity":
		return ErrInvalidCapacity
	case "Email":
		return ErrInvalidEmail
	default:
		return fmt.Errorf("invalid %s", strings.ToLower(fe.Field()))
	}
}

type ItemSubmission struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Expiry   string `json:"expiry"`
}

// DonorSubmission is the unvalidated donor form. Lat and Lng are pointers
// so a missing coordinate can be told apart from zero.
type DonorSubmission struct {
	Name    string           `json:"name" validate:"notblank"`
	Address string           `json:"address" validate:"notblank"`
	Lat     *float64         `json:"lat" validate:"required"`
	Lng     *float64         `json:"lng" validate:"required"`
	Items   []ItemSubmission `json:"items"`
}

type NGOSubmission struct {
	Name          string   `json:"name" validate:"notblank"`
	Address       string   `json:"address" validate:"notblank"`
	Lat           *float64 `json:"lat" validate:"required"`
	Lng           *float64 `json:"lng" validate:"required"`
	ContactPerson string   `json:"contactPerson" validate:"notblank"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Capacity      *int     `json:"capacity" validate:"omitempty,gt=0"`
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func location(lat, lng *float64) (models.Coordinate, error) {
	c := models.Coordinate{Lat: *lat, Lng: *lng}
	if !c.Valid() {
		return models.Coordinate{}, fmt.Errorf("%w: lat=%g lng=%g", ErrInvalidCoordinates, c.Lat, c.Lng)
	}
	return c, nil
}

// validItems keeps items with a name, a positive quantity and a parseable
// expiry. Anything else is dropped silently.
func validItems(subs []ItemSubmission) []models.PerishableItem {
	items := make([]models.PerishableItem, 0, len(subs))
	for _, s := range subs {
		if blank(s.Name) || s.Quantity <= 0 {
			continue
		}
		exp, err := expiry.ParseExpiry(s.Expiry)
		if err != nil {
			continue
		}
		items = append(items, models.PerishableItem{
			Name:     strings.TrimSpace(s.Name),
			Quantity: s.Quantity,
			Expiry:   exp,
		})
	}
	return items
}

func (s DonorSubmission) validate() (models.Donor, error) {
	if err := checkStruct(s); err != nil {
		return models.Donor{}, err
	}
	loc, err := location(s.Lat, s.Lng)
	if err != nil {
		return models.Donor{}, err
	}
	items := validItems(s.Items)
	if len(items) == 0 {
		return models.Donor{}, ErrNoValidItems
	}
	return models.Donor{
		Name:     strings.TrimSpace(s.Name),
		Address:  strings.TrimSpace(s.Address),
		Location: loc,
		Items:    items,
	}, nil
}

func (s NGOSubmission) validate() (models.NGO, error) {
	if err := checkStruct(s); err != nil {
		return models.NGO{}, err
	}
	loc, err := location(s.Lat, s.Lng)
	if err != nil {
		return models.NGO{}, err
	}
	return models.NGO{
		Name:          strings.TrimSpace(s.Name),
		Address:       strings.TrimSpace(s.Address),
		Location:      loc,
		ContactPerson: strings.TrimSpace(s.ContactPerson),
		Phone:         strings.TrimSpace(s.Phone),
		Email:         strings.TrimSpace(s.Email),
		Capacity:      s.Capacity,
	}, nil
}
