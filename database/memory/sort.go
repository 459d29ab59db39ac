package memory

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sortDocs[T any](docs []T, spec bson.D, field func(T, string) interface{}) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, e := range spec {
			dir, _ := e.Value.(int)
			if dir == 0 {
				dir = 1
			}
			c := compare(field(docs[i], e.Key), field(docs[j], e.Key))
			if c != 0 {
				return c*dir < 0
			}
		}
		return false
	})
}

// compare orders two field values the way the server would for the types
// the models use. Missing values sort first.
func compare(a, b interface{}) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		return cmpOrdered(float64(av), toFloat(b))
	case int64:
		return cmpOrdered(float64(av), toFloat(b))
	case float64:
		return cmpOrdered(av, toFloat(b))
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case primitive.ObjectID:
		bv := b.(primitive.ObjectID)
		return strings.Compare(av.Hex(), bv.Hex())
	}
	return 0
}

func deref(v interface{}) interface{} {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int:
		if p == nil {
			return nil
		}
		return *p
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func cmpOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
