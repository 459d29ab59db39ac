// Package memory is a process-local implementation of the reservation
// store. It follows the same contract as the MongoDB store, including
// unique keys, guarded reference updates and text search, and is used by
// the "memory" store driver and by tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu           sync.RWMutex
	diners       map[primitive.ObjectID]*models.Diner
	tables       map[primitive.ObjectID]*models.Table
	reservations map[primitive.ObjectID]*models.Reservation
	payments     map[primitive.ObjectID]*models.Payment
	workflows    map[primitive.ObjectID]*models.Workflow
}

func NewStore() *Store {
	return &Store{
		diners:       make(map[primitive.ObjectID]*models.Diner),
		tables:       make(map[primitive.ObjectID]*models.Table),
		reservations: make(map[primitive.ObjectID]*models.Reservation),
		payments:     make(map[primitive.ObjectID]*models.Payment),
		workflows:    make(map[primitive.ObjectID]*models.Workflow),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(ctx context.Context) error { return nil }

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func indexOf(ids []primitive.ObjectID, id primitive.ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func remove(ids []primitive.ObjectID, i int) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

// matchesText reports whether any whitespace separated term of keyword
// occurs in one of the fields, ignoring case.
func matchesText(keyword string, fields ...*string) bool {
	terms := strings.Fields(strings.ToLower(keyword))
	for _, f := range fields {
		if f == nil {
			continue
		}
		value := strings.ToLower(*f)
		for _, t := range terms {
			if strings.Contains(value, t) {
				return true
			}
		}
	}
	return false
}

// page applies sort, skip and limit to docs.
func page[T any](docs []T, q models.PageQuery, field func(T, string) interface{}) *models.Page[T] {
	sortDocs(docs, q.Sort, field)
	total := int64(len(docs))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + int64(q.Limit)
	if q.Limit <= 0 || end > total {
		end = total
	}
	return models.NewPage(docs[start:end], total, q)
}
