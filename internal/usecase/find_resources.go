package usecase

import (
	"context"

	"github.com/neurolearn/shell/internal/domain/resource"
	"github.com/swaggest/usecase"
	"github.com/swaggest/usecase/status"
)

// FindResources lists all learning resources in id order.
func FindResources(deps interface {
	ResourceFinder() resource.Finder
}) usecase.Interactor {
	u := struct {
		usecase.Interactor
		usecase.Info
		usecase.WithOutput
	}{}

	u.SetTitle("Find Resources")
	u.Output = new([]resource.Entity)
	u.SetTags("Resources")

	u.Interactor = usecase.Interact(func(ctx context.Context, _, output interface{}) error {
		out := output.(*[]resource.Entity)

		list, err := deps.ResourceFinder().Find(ctx)
		if err != nil {
			return err
		}

		if list == nil {
			list = []resource.Entity{}
		}

		*out = list

		return nil
	})

	return u
}

// FindResource reads a learning resource by id.
func FindResource(deps interface {
	ResourceFinder() resource.Finder
}) usecase.Interactor {
	u := struct {
		usecase.Interactor
		usecase.Info
		usecase.WithInput
		usecase.WithOutput
	}{}

	u.SetTitle("Find Resource")
	u.Input = new(resource.Identity)
	u.Output = new(resource.Entity)
	u.SetExpectedErrors(status.NotFound)
	u.SetTags("Resources")

	u.Interactor = usecase.Interact(func(ctx context.Context, input, output interface{}) error {
		var (
			in  = input.(*resource.Identity)
			out = output.(*resource.Entity)
			err error
		)

		*out, err = deps.ResourceFinder().FindByID(ctx, *in)

		return err
	})

	return u
}
