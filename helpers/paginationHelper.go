package helpers

import (
	"strconv"
	"strings"

	"go-restobook/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortSpec describes which fields a listing may be sorted on and the
// default order.
type SortSpec struct {
	Allowed map[string]bool
	Default string
}

var (
	DinerSort = SortSpec{
		Allowed: map[string]bool{"fname": true, "lname": true, "email": true, "phone": true, "reservationCount": true, "dateRegistered": true},
		Default: "-dateRegistered",
	}
	TableSort = SortSpec{
		Allowed: map[string]bool{"tableName": true, "seatCapacity": true, "reservationCount": true, "dateAdded": true},
		Default: "-dateAdded",
	}
	ReservationSort = SortSpec{
		Allowed: map[string]bool{"date": true, "timeEnter": true, "status": true, "guestsCount": true, "dateReserved": true},
		Default: "-dateReserved",
	}
	WorkflowSort = SortSpec{
		Allowed: map[string]bool{"startedAt": true, "updatedAt": true, "kind": true, "state": true},
		Default: "-startedAt",
	}
)

// ParsePageQuery reads page, limit, sort and keyword from the query string.
// Bad page or limit values fall back to the defaults rather than failing.
func ParsePageQuery(c *gin.Context, spec SortSpec) (models.PageQuery, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	sort, err := ParseSort(c.Query("sort"), spec)
	if err != nil {
		return models.PageQuery{}, err
	}
	return models.PageQuery{
		Page:    page,
		Limit:   limit,
		Sort:    sort,
		Keyword: strings.TrimSpace(c.Query("keyword")),
	}, nil
}

// ParseSort turns "field", "-field" or "a -b" (space or comma separated)
// into a sort document. An empty string gives the listing default.
func ParseSort(raw string, spec SortSpec) (bson.D, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = spec.Default
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	sort := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		switch {
		case strings.HasPrefix(f, "-"):
			dir = -1
			f = f[1:]
		case strings.HasPrefix(f, "+"):
			f = f[1:]
		}
		if !spec.Allowed[f] {
			return nil, models.Invalid("cannot sort on %q", f)
		}
		sort = append(sort, bson.E{Key: f, Value: dir})
	}
	// _id breaks ties so pages do not overlap.
	sort = append(sort, bson.E{Key: "_id", Value: -1})
	return sort, nil
}
