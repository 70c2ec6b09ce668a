// Package validation implements the gate that turns loosely typed product
// payloads into typed create and update requests.
//
// Every problem found in a payload is reported, not just the first one. The
// problems are returned as a single validation DomainError whose Errors list
// follows the field order name, description, price, category, inStock.
package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"catalog-api/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field problem messages.
const (
	MsgName         = "Name is required and must be a non-empty string"
	MsgDescription  = "Description is required and must be a non-empty string"
	MsgPriceMissing = "Price is required"
	MsgPriceInvalid = "Price must be a valid positive number"
	MsgCategory     = "Category is required and must be a non-empty string"
	MsgInStock      = "inStock must be a boolean value"

	msgFailed = "Validation failed"
)

// fieldOrder is the order problems are reported in.
var fieldOrder = []string{"Name", "Description", "Price", "Category", "InStock"}

// jsonKeys maps payload keys to productPayload field names.
var jsonKeys = map[string]string{
	"name":        "Name",
	"description": "Description",
	"price":       "Price",
	"category":    "Category",
	"inStock":     "InStock",
}

// ProductValidator validates product payloads for the create and update routes.
type ProductValidator interface {
	// ParseCreate validates a full product payload. Name, description, price
	// and category are required; inStock is optional.
	ParseCreate(body []byte) (*model.CreateProductRequest, error)

	// ParseUpdate validates a partial product payload. Only the fields present
	// in the body are checked, each against the same rule as ParseCreate.
	ParseUpdate(body []byte) (*model.UpdateProductRequest, error)
}

// productPayload is the typed view of a payload after coercion.
type productPayload struct {
	Name        string   `validate:"notblank"`
	Description string   `validate:"notblank"`
	Price       *float64 `validate:"required,gte=0"`
	Category    string   `validate:"notblank"`
}

// productValidator implements ProductValidator.
type productValidator struct {
	validate *validator.Validate
}

// NewProductValidator creates a product payload validator.
func NewProductValidator() ProductValidator {
	v := validator.New()
	// notblank is registered once here; RegisterValidation only fails on an empty tag.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &productValidator{validate: v}
}

// ParseCreate validates a full product payload.
func (v *productValidator) ParseCreate(body []byte) (*model.CreateProductRequest, error) {
	d, err := decode(body)
	if err != nil {
		return nil, err
	}

	v.check(d, nil)
	if err := d.err(); err != nil {
		return nil, err
	}

	return &model.CreateProductRequest{
		Name:        d.payload.Name,
		Description: d.payload.Description,
		Price:       *d.payload.Price,
		Category:    d.payload.Category,
		InStock:     d.inStock,
	}, nil
}

// ParseUpdate validates a partial product payload.
func (v *productValidator) ParseUpdate(body []byte) (*model.UpdateProductRequest, error) {
	d, err := decode(body)
	if err != nil {
		return nil, err
	}

	var fields []string
	for _, f := range []string{"Name", "Description", "Price", "Category"} {
		if d.present[f] {
			fields = append(fields, f)
		}
	}
	if len(fields) > 0 {
		v.check(d, fields)
	}
	if err := d.err(); err != nil {
		return nil, err
	}

	req := &model.UpdateProductRequest{
		Price:   d.payload.Price,
		InStock: d.inStock,
	}
	if d.present["Name"] {
		req.Name = &d.payload.Name
	}
	if d.present["Description"] {
		req.Description = &d.payload.Description
	}
	if d.present["Category"] {
		req.Category = &d.payload.Category
	}
	return req, nil
}

// check runs the struct rules, restricted to fields when it is non-nil.
func (v *productValidator) check(d *decoded, fields []string) {
	var err error
	if fields == nil {
		err = v.validate.Struct(d.payload)
	} else {
		err = v.validate.StructPartial(d.payload, fields...)
	}
	if err == nil {
		return
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		d.addProblem("Price", MsgPriceInvalid)
		return
	}
	for _, e := range validationErrors {
		d.addProblem(e.Field(), messageFor(e.Field(), e.Tag()))
	}
}

func messageFor(field, tag string) string {
	switch field {
	case "Name":
		return MsgName
	case "Description":
		return MsgDescription
	case "Category":
		return MsgCategory
	case "Price":
		if tag == "required" {
			return MsgPriceMissing
		}
		return MsgPriceInvalid
	default:
		return MsgInStock
	}
}

// decoded carries a payload through coercion and validation.
type decoded struct {
	payload  productPayload
	inStock  *bool
	present  map[string]bool
	problems map[string]string
}

// decode coerces the raw JSON object into a productPayload, recording type
// problems as it goes. It fails only when the body is not a JSON object.
func decode(body []byte) (*decoded, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, model.NewValidationError(model.MsgInvalidRequestBody)
	}

	d := &decoded{
		present:  make(map[string]bool, len(raw)),
		problems: make(map[string]string),
	}

	for key, value := range raw {
		field, ok := jsonKeys[key]
		if !ok {
			continue
		}
		d.present[field] = true

		switch field {
		case "Name":
			d.payload.Name = d.text(field, value, MsgName)
		case "Description":
			d.payload.Description = d.text(field, value, MsgDescription)
		case "Category":
			d.payload.Category = d.text(field, value, MsgCategory)
		case "Price":
			d.payload.Price = d.price(value)
		case "InStock":
			var b bool
			if isNull(value) || json.Unmarshal(value, &b) != nil {
				d.addProblem(field, MsgInStock)
				continue
			}
			d.inStock = &b
		}
	}

	return d, nil
}

// text decodes a JSON string, recording msg when the value is not a string.
func (d *decoded) text(field string, value json.RawMessage, msg string) string {
	var s string
	if isNull(value) || json.Unmarshal(value, &s) != nil {
		d.addProblem(field, msg)
		return ""
	}
	return s
}

// price accepts a JSON number or a numeric string.
func (d *decoded) price(value json.RawMessage) *float64 {
	if isNull(value) {
		d.addProblem("Price", MsgPriceMissing)
		return nil
	}

	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return &n
		}
	}

	d.addProblem("Price", MsgPriceInvalid)
	return nil
}

// addProblem records the first problem seen for a field.
func (d *decoded) addProblem(field, msg string) {
	if _, exists := d.problems[field]; !exists {
		d.problems[field] = msg
	}
}

// err aggregates the recorded problems into a single validation error.
func (d *decoded) err() error {
	if len(d.problems) == 0 {
		return nil
	}

	problems := make([]string, 0, len(d.problems))
	for _, field := range fieldOrder {
		if msg, ok := d.problems[field]; ok {
			problems = append(problems, msg)
		}
	}
	return model.NewValidationError(msgFailed, problems...)
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
