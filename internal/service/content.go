package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSlugAttempts = 50

type ContentService struct {
	repo *repository.ContentRepository
	now  func() time.Time
}

func NewContentService(repo *repository.ContentRepository) *ContentService {
	return &ContentService{repo: repo, now: time.Now}
}

// List returns contents for a listing page. Public callers always get
// PublishedOnly set by the handler.
func (s *ContentService) List(ctx context.Context, page constants.PaginationParams, filter dto.ContentFilter) ([]dto.ContentResponse, int64, int, error) {
	ctx = ctxutil.Tag(ctx, "service", "ContentList")

	contents, total, err := s.repo.List(ctx, page.Limit, page.Offset, filter)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.ContentResponse, 0, len(contents))
	for i := range contents {
		item := toContentResponse(&contents[i])
		item.Body = ""
		res = append(res, item)
	}
	return res, total, page.PageTotal(total), nil
}

// GetPublishedBySlug hides drafts behind NotFound.
func (s *ContentService) GetPublishedBySlug(ctx context.Context, slugValue string) (*dto.ContentResponse, error) {
	content, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrContentNotFound)
	}
	if !content.IsPublished() {
		return nil, apperrors.ErrContentNotFound
	}
	res := toContentResponse(content)
	return &res, nil
}

func (s *ContentService) GetByID(ctx context.Context, id uint) (*dto.ContentResponse, error) {
	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrContentNotFound)
	}
	res := toContentResponse(content)
	return &res, nil
}

func (s *ContentService) Create(ctx context.Context, authorID uint, req dto.ContentRequest) (*dto.ContentResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "ContentCreate")

	base := req.Slug
	if base == "" {
		base = req.Title
	}
	slugValue, err := s.uniqueSlug(ctx, base, 0)
	if err != nil {
		return nil, err
	}

	content := &model.Content{
		Title:      strings.TrimSpace(req.Title),
		Slug:       slugValue,
		Type:       model.ContentType(req.Type),
		Excerpt:    req.Excerpt,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		Tags:       datatypes.JSONSlice[string](normalizeTags(req.Tags)),
		Status:     model.ContentStatusDraft,
		AuthorID:   authorID,
	}
	s.applyStatus(content, req.Status)

	if err := s.repo.Create(ctx, content); err != nil {
		if field, ok := repository.DuplicateField(err); ok {
			return nil, apperrors.NewAlreadyExists(field)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Content created").
		Uint("content_id", content.ID).
		String("status", string(content.Status)).
		Log()

	return s.GetByID(ctx, content.ID)
}

func (s *ContentService) Update(ctx context.Context, id uint, req dto.ContentRequest) (*dto.ContentResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "ContentUpdate")

	content, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrContentNotFound)
	}

	if req.Slug != "" && slug.Make(req.Slug) != content.Slug {
		slugValue, err := s.uniqueSlug(ctx, req.Slug, content.ID)
		if err != nil {
			return nil, err
		}
		content.Slug = slugValue
	}

	content.Title = strings.TrimSpace(req.Title)
	content.Type = model.ContentType(req.Type)
	content.Excerpt = req.Excerpt
	content.Body = req.Body
	content.CoverImage = req.CoverImage
	content.Tags = datatypes.JSONSlice[string](normalizeTags(req.Tags))
	s.applyStatus(content, req.Status)

	if err := s.repo.Update(ctx, content); err != nil {
		if field, ok := repository.DuplicateField(err); ok {
			return nil, apperrors.NewAlreadyExists(field)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return s.GetByID(ctx, content.ID)
}

func (s *ContentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, apperrors.ErrContentNotFound)
	}
	return nil
}

// applyStatus stamps PublishedAt the first time content is published and
// leaves it on later edits.
func (s *ContentService) applyStatus(content *model.Content, status string) {
	if status == "" {
		return
	}
	content.Status = model.ContentStatus(status)
	if content.Status == model.ContentStatusPublished && content.PublishedAt == nil {
		now := s.now().UTC()
		content.PublishedAt = &now
	}
}

// uniqueSlug slugifies base and appends -2, -3, ... until it is free.
func (s *ContentService) uniqueSlug(ctx context.Context, base string, excludeID uint) (string, error) {
	root := slug.Make(base)
	if root == "" {
		return "", apperrors.NewValidationError("slug", "slug cannot be derived from the title")
	}

	candidate := root
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", root, i)
	}
	return "", apperrors.NewAlreadyExists("slug")
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toContentResponse(c *model.Content) dto.ContentResponse {
	res := dto.ContentResponse{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Type:        string(c.Type),
		Excerpt:     c.Excerpt,
		Body:        c.Body,
		CoverImage:  c.CoverImage,
		Tags:        []string(c.Tags),
		Status:      string(c.Status),
		PublishedAt: c.PublishedAt,
		AuthorID:    c.AuthorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if c.Author != nil {
		res.AuthorName = c.Author.Username
	}
	return res
}

// notFoundOr maps gorm's missing-row error to notFound and wraps the rest.
func notFoundOr(err error, notFound *apperrors.DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}
