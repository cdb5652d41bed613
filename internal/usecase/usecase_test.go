package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neurolearn/shell/internal/domain/resource"
	"github.com/neurolearn/shell/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/usecase/status"
)

type fakeRepo struct {
	created []resource.Value
	list    []resource.Entity
	err     error
}

func (f *fakeRepo) ResourceCreator() resource.Creator { return f }
func (f *fakeRepo) ResourceFinder() resource.Finder   { return f }

func (f *fakeRepo) Create(_ context.Context, v resource.Value) (resource.Entity, error) {
	if f.err != nil {
		return resource.Entity{}, f.err
	}

	f.created = append(f.created, v)

	return resource.Entity{Identity: resource.Identity{ID: len(f.created)}, Value: v}, nil
}

func (f *fakeRepo) Find(context.Context) ([]resource.Entity, error) {
	return f.list, f.err
}

func (f *fakeRepo) FindByID(_ context.Context, id resource.Identity) (resource.Entity, error) {
	for _, e := range f.list {
		if e.Identity == id {
			return e, nil
		}
	}

	return resource.Entity{}, status.NotFound
}

func TestCreateResource(t *testing.T) {
	repo := &fakeRepo{}
	u := usecase.CreateResource(repo)

	var out resource.Entity

	require.NoError(t, u.Interact(context.Background(), &resource.Value{Title: "a", Content: "b", ResourceType: "c"}, &out))
	assert.Equal(t, 1, out.ID)
	assert.Equal(t, "a", out.Title)
	assert.Len(t, repo.created, 1)

	repo.err = errors.New("disk full")
	assert.EqualError(t, u.Interact(context.Background(), &resource.Value{}, &out), "disk full")
}

func TestFindResources(t *testing.T) {
	repo := &fakeRepo{}
	u := usecase.FindResources(repo)

	var out []resource.Entity

	require.NoError(t, u.Interact(context.Background(), nil, &out))
	assert.NotNil(t, out)
	assert.Empty(t, out)

	repo.list = []resource.Entity{{Identity: resource.Identity{ID: 1}}, {Identity: resource.Identity{ID: 2}}}
	require.NoError(t, u.Interact(context.Background(), nil, &out))
	assert.Len(t, out, 2)
}

func TestFindResource(t *testing.T) {
	repo := &fakeRepo{list: []resource.Entity{{Identity: resource.Identity{ID: 3}, Value: resource.Value{Title: "x"}}}}
	u := usecase.FindResource(repo)

	var out resource.Entity

	require.NoError(t, u.Interact(context.Background(), &resource.Identity{ID: 3}, &out))
	assert.Equal(t, "x", out.Title)

	err := u.Interact(context.Background(), &resource.Identity{ID: 4}, &out)
	assert.True(t, errors.Is(err, status.NotFound))
}
