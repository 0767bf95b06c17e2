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
	"gorm.io/gorm"
)

type enquiryFixture struct {
	db      *gorm.DB
	service *EnquiryService
	admin   *model.User
	alice   *model.User
	bob     *model.User
}

func newEnquiryFixture(t *testing.T) *enquiryFixture {
	db := testutil.NewDB(t)
	return &enquiryFixture{
		db:      db,
		service: NewEnquiryService(repository.NewEnquiryRepository(db), repository.NewProductRepository(db)),
		admin:   testutil.CreateUser(t, db, "admin", "admin@example.com", "secret1", model.RoleAdmin),
		alice:   testutil.CreateUser(t, db, "alice", "alice@example.com", "secret1", model.RoleUser),
		bob:     testutil.CreateUser(t, db, "bob", "bob@example.com", "secret1", model.RoleUser),
	}
}

func enquiryRequest(message string) dto.CreateEnquiryRequest {
	return dto.CreateEnquiryRequest{Name: "Alice", Email: "Alice@Example.com", Message: message}
}

func TestEnquiryService_CreateAnonymousAndOwned(t *testing.T) {
	f := newEnquiryFixture(t)
	ctx := context.Background()

	anon, err := f.service.Create(ctx, nil, enquiryRequest("hello"))
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)
	assert.Equal(t, "new", anon.Status)
	assert.Equal(t, "alice@example.com", anon.Email)

	owned, err := f.service.Create(ctx, f.alice, enquiryRequest("hello again"))
	require.NoError(t, err)
	require.NotNil(t, owned.UserID)
	assert.Equal(t, f.alice.ID, *owned.UserID)
}

func TestEnquiryService_CreateChecksProduct(t *testing.T) {
	f := newEnquiryFixture(t)
	ctx := context.Background()
	product := testutil.CreateProduct(t, f.db, "Managed Hosting", "managed-hosting", true)

	req := enquiryRequest("pricing?")
	req.ProductID = &product.ID
	res, err := f.service.Create(ctx, nil, req)
	require.NoError(t, err)
	assert.Equal(t, product.ID, *res.ProductID)

	missing := uint(9999)
	req.ProductID = &missing
	_, err = f.service.Create(ctx, nil, req)
	assert.True(t, errors.Is(err, apperrors.ErrProductNotFound))

	_, err = f.service.Create(ctx, nil, enquiryRequest("   "))
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetErrorCode(err))
}

func TestEnquiryService_GetOwnership(t *testing.T) {
	f := newEnquiryFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.alice, enquiryRequest("mine"))
	require.NoError(t, err)
	anon, err := f.service.Create(ctx, nil, enquiryRequest("nobody's"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller *model.User
		id     uint
		code   string
	}{
		{"owner", f.alice, created.ID, ""},
		{"admin", f.admin, created.ID, ""},
		{"other user", f.bob, created.ID, apperrors.CodeForbidden},
		{"anonymous enquiry", f.alice, anon.ID, apperrors.CodeForbidden},
		{"admin reads anonymous", f.admin, anon.ID, ""},
		{"missing", f.admin, 9999, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.service.Get(ctx, tt.caller, tt.id)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.id, res.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetErrorCode(err))
		})
	}
}

func TestEnquiryService_ListMineOnlyReturnsOwn(t *testing.T) {
	f := newEnquiryFixture(t)
	ctx := context.Background()

	for _, caller := range []*model.User{f.alice, f.alice, f.bob, nil} {
		_, err := f.service.Create(ctx, caller, enquiryRequest("hi"))
		require.NoError(t, err)
	}

	mine, total, _, err := f.service.ListMine(ctx, f.alice, firstPage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range mine {
		require.NotNil(t, e.UserID)
		assert.Equal(t, f.alice.ID, *e.UserID)
	}

	all, total, _, err := f.service.List(ctx, firstPage, dto.EnquiryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestEnquiryService_UpdateStatus(t *testing.T) {
	f := newEnquiryFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, nil, enquiryRequest("call me"))
	require.NoError(t, err)

	reply := "We will call you tomorrow"
	updated, err := f.service.UpdateStatus(ctx, created.ID, dto.UpdateEnquiryRequest{Response: &reply})
	require.NoError(t, err)
	assert.Equal(t, "responded", updated.Status)
	assert.Equal(t, reply, updated.Response)
	assert.NotNil(t, updated.RespondedAt)

	closed, err := f.service.UpdateStatus(ctx, created.ID, dto.UpdateEnquiryRequest{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)

	_, err = f.service.UpdateStatus(ctx, created.ID, dto.UpdateEnquiryRequest{})
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetErrorCode(err))

	_, err = f.service.UpdateStatus(ctx, created.ID, dto.UpdateEnquiryRequest{Status: "lost"})
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetErrorCode(err))

	filtered, total, _, err := f.service.List(ctx, firstPage, dto.EnquiryFilter{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, created.ID, filtered[0].ID)
}
