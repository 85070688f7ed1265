// Package registry holds the cars of the active connection keyed by car id.
package registry

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/accbroadcast-go/pkg/model"
)

// Registry is not safe for concurrent use, it is owned by the session controller.
// Keys are exactly the car ids of the most recent entry list.
type Registry struct {
	cars map[uint16]*model.Car
}

func New() *Registry {
	return &Registry{cars: make(map[uint16]*model.Car)}
}

// Reset drops all cars and adds a placeholder for each id
func (r *Registry) Reset(ids []uint16) {
	clear(r.cars)
	for _, id := range ids {
		r.cars[id] = nil
	}
}

// Replace stores car for an announced id.
// Returns false (and stores nothing) if the id was not announced.
func (r *Registry) Replace(id uint16, car *model.Car) bool {
	if _, ok := r.cars[id]; !ok {
		return false
	}
	r.cars[id] = car
	return true
}

// Lookup returns the car for id. The car is nil for placeholders and unknown ids,
// known tells if the id is part of the entry list.
func (r *Registry) Lookup(id int32) (car *model.Car, known bool) {
	if id < 0 || id > math.MaxUint16 {
		return nil, false
	}
	car, known = r.cars[uint16(id)]
	return car, known
}

func (r *Registry) Contains(id uint16) bool {
	_, ok := r.cars[id]
	return ok
}

// IsPlaceholder reports whether id is announced but has no details yet
func (r *Registry) IsPlaceholder(id uint16) bool {
	car, ok := r.cars[id]
	return ok && car == nil
}

func (r *Registry) Len() int {
	return len(r.cars)
}

// IDs returns the registered car ids in ascending order
func (r *Registry) IDs() []uint16 {
	ids := lo.Keys(r.cars)
	slices.Sort(ids)
	return ids
}

// Snapshot returns a copy of the registry content.
// Cars are shared, they are never modified after being stored.
func (r *Registry) Snapshot() model.CarMap {
	ret := make(model.CarMap, len(r.cars))
	for k, v := range r.cars {
		ret[k] = v
	}
	return ret
}
