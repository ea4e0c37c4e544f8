// Package crisis holds the ordered set of open crises.
package crisis

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

var (
	ErrInvalidCrisis   = errors.New("invalid crisis")
	ErrDuplicateCrisis = errors.New("crisis id already open")
)

type Action string

const (
	ActionDismiss Action = "dismiss"
	ActionResolve Action = "resolve"
)

// Outcome reports the effect of a dismiss or resolve. Removing an unknown id
// is not an error; Removed is simply false.
type Outcome struct {
	Action  Action         `json:"action"`
	ID      string         `json:"id"`
	Removed bool           `json:"removed"`
	Crisis  *models.Crisis `json:"crisis,omitempty"`
}

// Registry keeps open crises in insertion order, which is also display order.
// It is not safe for concurrent use; the owner serializes calls.
type Registry struct {
	crises []models.Crisis
}

func NewRegistry(seed ...models.Crisis) (*Registry, error) {
	r := &Registry{}
	for _, c := range seed {
		if err := r.Add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(c models.Crisis) error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCrisis)
	}
	if r.Has(c.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateCrisis, c.ID)
	}
	r.crises = append(r.crises, c)
	return nil
}

func (r *Registry) Dismiss(id string) Outcome {
	return r.remove(ActionDismiss, id)
}

// Resolve has the same storage effect as Dismiss. Only the reported Action
// differs.
func (r *Registry) Resolve(id string) Outcome {
	return r.remove(ActionResolve, id)
}

func (r *Registry) remove(action Action, id string) Outcome {
	out := Outcome{Action: action, ID: id}

	i := r.index(id)
	if i < 0 {
		return out
	}

	removed := r.crises[i]
	r.crises = slices.Delete(r.crises, i, i+1)

	out.Removed = true
	out.Crisis = &removed
	return out
}

// List returns a copy of the open crises in insertion order.
// List returns a snapshot in insertion order. An empty registry yields an
// empty, non-nil slice.
func (r *Registry) List() []models.Crisis {
	return append(make([]models.Crisis, 0, len(r.crises)), r.crises...)
}

func (r *Registry) Len() int {
	return len(r.crises)
}

func (r *Registry) Has(id string) bool {
	return r.index(id) >= 0
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.crises, func(c models.Crisis) bool {
		return c.ID == id
	})
}
