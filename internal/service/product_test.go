package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	"github.com/Payphone-Digital/bizsite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestProductService_ListHidesInactive(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(repository.NewProductRepository(db))
	ctx := context.Background()

	testutil.CreateProduct(t, db, "Care Plan", "care-plan", false)
	testutil.CreateProduct(t, db, "Managed Hosting", "managed-hosting", true)
	retired := testutil.CreateProduct(t, db, "Legacy Hosting", "legacy-hosting", false)
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", retired.ID).Update("active", false).Error)

	res, total, _, err := svc.List(ctx, firstPage, dto.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, res, 2)
	assert.Equal(t, "managed-hosting", res[0].Slug, "featured products come first")
	assert.NotNil(t, res[1].Images)

	_, err = svc.GetBySlug(ctx, "legacy-hosting")
	assert.True(t, errors.Is(err, apperrors.ErrProductNotFound))
}

func TestProductService_Filters(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(repository.NewProductRepository(db))
	ctx := context.Background()

	testutil.CreateProduct(t, db, "Care Plan", "care-plan", false)
	testutil.CreateProduct(t, db, "Managed Hosting", "managed-hosting", true)
	analytics := &model.Product{Name: "Analytics", Slug: "analytics", Category: "software", Summary: "Traffic reports", Active: true}
	require.NoError(t, db.Create(analytics).Error)

	featured := true
	tests := []struct {
		name   string
		filter dto.ProductFilter
		want   int64
	}{
		{"all", dto.ProductFilter{}, 3},
		{"category", dto.ProductFilter{Category: "software"}, 1},
		{"featured", dto.ProductFilter{Featured: &featured}, 1},
		{"search name", dto.ProductFilter{Search: "HOSTING"}, 1},
		{"search summary", dto.ProductFilter{Search: "traffic"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, _, err := svc.List(ctx, firstPage, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestProductService_GetBySlugIncludesDetail(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewProductService(repository.NewProductRepository(db))

	product := &model.Product{
		Name:        "Managed Hosting",
		Slug:        "managed-hosting",
		Description: "Monitoring and backups.",
		Specs:       datatypes.JSONMap{"uptime": "99.9%"},
		Images:      datatypes.JSONSlice[string]{"/a.png"},
		Active:      true,
	}
	require.NoError(t, db.Create(product).Error)

	res, err := svc.GetBySlug(context.Background(), "managed-hosting")
	require.NoError(t, err)
	assert.Equal(t, "Monitoring and backups.", res.Description)
	assert.Equal(t, "99.9%", res.Specs["uptime"])
	assert.Equal(t, []string{"/a.png"}, res.Images)

	res2, _, _, err := svc.List(context.Background(), firstPage, dto.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, res2, 1)
	assert.Empty(t, res2[0].Description)
	assert.Nil(t, res2[0].Specs)
}
