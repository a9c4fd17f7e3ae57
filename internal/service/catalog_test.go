package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
)

func TestTitleYearBound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "root", policy.RoleAdmin)
	thisYear := now().Year()

	_, err := e.Titles.Create(ctx, admin, transport.TitleCreateRequest{Name: "Future", Year: intp(thisYear + 1)})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fieldsOf(t, err), "year")

	created, err := e.Titles.Create(ctx, admin, transport.TitleCreateRequest{Name: "Now", Year: intp(thisYear)})
	require.NoError(t, err)
	require.NotNil(t, created.Year)
	assert.Equal(t, thisYear, *created.Year)
	assert.Nil(t, created.Rating)

	_, err = e.Titles.Update(ctx, admin, created.ID, transport.TitlePatchRequest{Year: intp(thisYear + 1)})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := e.Titles.Update(ctx, admin, created.ID, transport.TitlePatchRequest{Year: intp(thisYear - 10)})
	require.NoError(t, err)
	assert.Equal(t, thisYear-10, *updated.Year)
}

func TestTitles_WritesAreAdminOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice", policy.RoleUser)
	mod := e.user(t, "mod", policy.RoleModerator)

	_, err := e.Titles.Create(ctx, nil, transport.TitleCreateRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = e.Titles.Create(ctx, alice, transport.TitleCreateRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.Catalog.CreateGenre(ctx, mod, transport.SluggedRequest{Name: "Drama", Slug: "drama"})
	assert.ErrorIs(t, err, ErrForbidden)

	titleID := e.title(t, "Dune")
	assert.ErrorIs(t, e.Titles.Delete(ctx, mod, titleID), ErrForbidden)
}

func TestTitles_CategoryAndGenres(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "root", policy.RoleAdmin)

	_, err := e.Catalog.CreateCategory(ctx, admin, transport.SluggedRequest{Name: "Books", Slug: "books"})
	require.NoError(t, err)
	_, err = e.Catalog.CreateCategory(ctx, admin, transport.SluggedRequest{Name: "Books again", Slug: "books"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fieldsOf(t, err), "slug")

	_, err = e.Catalog.CreateGenre(ctx, admin, transport.SluggedRequest{Name: "Bad", Slug: "bad slug!"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.Catalog.CreateGenre(ctx, admin, transport.SluggedRequest{Name: "Sci-Fi", Slug: "sci-fi"})
	require.NoError(t, err)
	_, err = e.Catalog.CreateGenre(ctx, admin, transport.SluggedRequest{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)

	_, err = e.Titles.Create(ctx, admin, transport.TitleCreateRequest{Name: "Dune", Genre: []string{"nope"}, Category: strp("books")})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, fieldsOf(t, err), "genre")

	dune, err := e.Titles.Create(ctx, admin, transport.TitleCreateRequest{Name: "Dune", Genre: []string{"sci-fi", "drama"}, Category: strp("books")})
	require.NoError(t, err)
	require.NotNil(t, dune.Category)
	assert.Equal(t, "books", dune.Category.Slug)
	assert.Len(t, dune.Genres, 2)

	total, items, err := e.Titles.List(ctx, repo.TitleFilter{Category: "books"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Dune", items[0].Name)

	only := []string{"drama"}
	patched, err := e.Titles.Update(ctx, admin, dune.ID, transport.TitlePatchRequest{Genre: &only})
	require.NoError(t, err)
	require.Len(t, patched.Genres, 1)
	assert.Equal(t, "drama", patched.Genres[0].Slug)

	require.NoError(t, e.Catalog.DeleteCategory(ctx, admin, "books"))
	got, err := e.Titles.Get(ctx, dune.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)

	assert.ErrorIs(t, e.Catalog.DeleteCategory(ctx, admin, "books"), ErrNotFound)

	require.NoError(t, e.Titles.Delete(ctx, admin, dune.ID))
	_, err = e.Titles.Get(ctx, dune.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Subset(t, e.Events.types(), []string{"category_created", "genre_created", "title_created", "title_updated", "category_deleted", "title_deleted"})
}
