package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	"github.com/Payphone-Digital/bizsite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstPage = constants.PaginationParams{Page: 1, Limit: 10, Offset: 0}

func newContentService(t *testing.T) (*ContentService, *model.User) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "editor", "editor@example.com", "secret1", model.RoleAdmin)
	return NewContentService(repository.NewContentRepository(db)), author
}

func TestContentService_CreateDerivesUniqueSlug(t *testing.T) {
	svc, author := newContentService(t)
	ctx := context.Background()

	req := dto.ContentRequest{Title: "Hello, World!", Type: "blog"}

	first, err := svc.Create(ctx, author.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "draft", first.Status)
	assert.Nil(t, first.PublishedAt)
	assert.Equal(t, author.ID, first.AuthorID)
	assert.Equal(t, "editor", first.AuthorName)

	second, err := svc.Create(ctx, author.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", second.Slug)

	third, err := svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Other", Slug: "Hello World", Type: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world-3", third.Slug)
}

func TestContentService_CreateRejectsUnsluggableTitle(t *testing.T) {
	svc, author := newContentService(t)

	_, err := svc.Create(context.Background(), author.ID, dto.ContentRequest{Title: "!!!", Type: "blog"})
	require.Error(t, err)
	assert.Equal(t, "slug", apperrors.GetDomainError(err).Field)
}

func TestContentService_PublishStampsOnce(t *testing.T) {
	svc, author := newContentService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Launch", Type: "case-study", Status: "published", Tags: []string{" Cloud ", "cloud", "SEO"}})
	require.NoError(t, err)
	require.NotNil(t, created.PublishedAt)
	assert.Equal(t, []string{"cloud", "seo"}, created.Tags)

	updated, err := svc.Update(ctx, created.ID, dto.ContentRequest{Title: "Launch v2", Type: "case-study", Status: "published"})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, created.PublishedAt.Equal(*updated.PublishedAt))
	assert.Equal(t, "Launch v2", updated.Title)
	assert.Equal(t, "launch", updated.Slug)
}

func TestContentService_DraftsAreHiddenFromPublic(t *testing.T) {
	svc, author := newContentService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Secret plan", Type: "blog"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Public post", Type: "blog", Status: "published"})
	require.NoError(t, err)

	_, err = svc.GetPublishedBySlug(ctx, "secret-plan")
	assert.True(t, errors.Is(err, apperrors.ErrContentNotFound))

	post, err := svc.GetPublishedBySlug(ctx, "public-post")
	require.NoError(t, err)
	assert.Equal(t, "Public post", post.Title)

	public, total, _, err := svc.List(ctx, firstPage, dto.ContentFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, public, 1)
	assert.Equal(t, "public-post", public[0].Slug)
	assert.Empty(t, public[0].Body)

	all, total, _, err := svc.List(ctx, firstPage, dto.ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestContentService_ListFilters(t *testing.T) {
	svc, author := newContentService(t)
	ctx := context.Background()

	seed := []dto.ContentRequest{
		{Title: "Go tips", Type: "blog", Status: "published", Tags: []string{"go", "backend"}},
		{Title: "Retail rollout", Type: "case-study", Status: "published", Tags: []string{"retail"}},
		{Title: "Gopher notes", Type: "blog", Status: "published", Tags: []string{"golang"}},
	}
	for _, req := range seed {
		_, err := svc.Create(ctx, author.ID, req)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter dto.ContentFilter
		slugs  []string
	}{
		{"by type", dto.ContentFilter{PublishedOnly: true, Type: "case-study"}, []string{"retail-rollout"}},
		{"by exact tag", dto.ContentFilter{PublishedOnly: true, Tag: "go"}, []string{"go-tips"}},
		{"tag is case insensitive", dto.ContentFilter{PublishedOnly: true, Tag: "RETAIL"}, []string{"retail-rollout"}},
		{"by search", dto.ContentFilter{PublishedOnly: true, Search: "gopher"}, []string{"gopher-notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _, _, err := svc.List(ctx, firstPage, tt.filter)
			require.NoError(t, err)
			var slugs []string
			for _, item := range items {
				slugs = append(slugs, item.Slug)
			}
			assert.ElementsMatch(t, tt.slugs, slugs)
		})
	}
}

func TestContentService_DeleteKeepsSlugReserved(t *testing.T) {
	svc, author := newContentService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Old news", Type: "blog"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrContentNotFound))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrContentNotFound))

	again, err := svc.Create(ctx, author.ID, dto.ContentRequest{Title: "Old news", Type: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "old-news-2", again.Slug)
}
