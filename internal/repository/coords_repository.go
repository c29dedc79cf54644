package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wedding-seating/internal/model"
)

// Point is a table position on the floor plan, as percentages of its
// width and height.  It marshals as a two-element array [x, y].
type Point [2]float64

// Coords maps a table key ("1".."35", "Novios") to its position.
type Coords map[string]Point

// Validate checks keys and ranges.
func (c Coords) Validate() error {
	for key, p := range c {
		if _, ok := tableKeys[key]; !ok {
			return fmt.Errorf("%w: unknown table %q", ErrInvalidCoords, key)
		}
		for _, v := range p {
			if math.IsNaN(v) || v < 0 || v > 100 {
				return fmt.Errorf("%w: %q out of range", ErrInvalidCoords, key)
			}
		}
	}
	return nil
}

var tableKeys = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range model.AllTables() {
		m[t.Key()] = struct{}{}
	}
	return m
}()

// CoordsRepo stores coordinates in one Redis hash, one field per table.
type CoordsRepo struct {
	rdb *redis.Client
	key string
}

// NewCoordsRepo returns a repo writing to hash key.  A nil client yields a
// repo whose calls fail with ErrUnavailable.
func NewCoordsRepo(rdb *redis.Client, key string) *CoordsRepo {
	if key == "" {
		key = "mesas:coords"
	}
	return &CoordsRepo{rdb: rdb, key: key}
}

// Available reports whether a Redis client is attached.
func (r *CoordsRepo) Available() bool { return r != nil && r.rdb != nil }

// All returns every stored position.  Fields that do not decode are
// skipped.
func (r *CoordsRepo) All(ctx context.Context) (Coords, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(Coords, len(fields))
	for k, raw := range fields {
		var p Point
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		out[k] = p
	}
	return out, nil
}

// Save validates c and upserts its entries.  Tables not in c keep their
// stored position.
func (r *CoordsRepo) Save(ctx context.Context, c Coords) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c) == 0 {
		return nil
	}
	values := make([]interface{}, 0, 2*len(c))
	for k, p := range c {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		values = append(values, k, string(b))
	}
	return r.rdb.HSet(ctx, r.key, values...).Err()
}

// Reset removes all stored positions.
func (r *CoordsRepo) Reset(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.rdb.Del(ctx, r.key).Err()
}
