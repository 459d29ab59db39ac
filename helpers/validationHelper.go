package helpers

import (
	"go-restobook/models"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

var validate = validator.New()

// Validate checks struct tags and reports failures as validation errors.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return models.Invalid("%s", err.Error())
	}
	return nil
}

// ObjectID parses a hex identifier from a path parameter or body.
func ObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, models.Invalid("invalid id %q", hex)
	}
	return id, nil
}

// ObjectIDs parses a list of identifiers and drops duplicates, keeping the
// first occurrence order.
func ObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool, len(hexes))
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := ObjectID(h)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
