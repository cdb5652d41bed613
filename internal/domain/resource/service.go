package resource

import "context"

// Creator stores new resources.
type Creator interface {
	Create(context.Context, Value) (Entity, error)
}

// Finder reads stored resources.
type Finder interface {
	Find(context.Context) ([]Entity, error)
	FindByID(context.Context, Identity) (Entity, error)
}
