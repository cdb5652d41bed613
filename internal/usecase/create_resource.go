package usecase

import (
	"context"

	"github.com/neurolearn/shell/internal/domain/resource"
	"github.com/swaggest/usecase"
	"github.com/swaggest/usecase/status"
)

// CreateResource stores a learning resource, any client supplied id is ignored.
func CreateResource(deps interface {
	ResourceCreator() resource.Creator
}) usecase.Interactor {
	u := struct {
		usecase.Interactor
		usecase.Info
		usecase.WithInput
		usecase.WithOutput
	}{}

	u.SetTitle("Create Resource")
	u.SetDescription("Create learning resource.")
	u.Input = new(resource.Value)
	u.Output = new(resource.Entity)
	u.SetExpectedErrors(status.InvalidArgument)
	u.SetTags("Resources")

	u.Interactor = usecase.Interact(func(ctx context.Context, input, output interface{}) error {
		var (
			in  = input.(*resource.Value)
			out = output.(*resource.Entity)
			err error
		)

		*out, err = deps.ResourceCreator().Create(ctx, *in)

		return err
	})

	return u
}
