package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/pkg/pagination"
)

func TestClientService_CreateClient(t *testing.T) {
	repo := new(MockClientRepository)
	cache := newMemCache()
	svc := NewClientService(repo, cache)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Client) bool {
		return c.UserID == testOwner && c.Name == "Amina" && c.Phone == "0600000000"
	})).Return(nil).Once()

	client, err := svc.CreateClient(ownerCtx(), &ClientInput{Name: "  Amina ", Phone: " 0600000000"})

	require.NoError(t, err)
	assert.Equal(t, "Amina", client.Name)
	assert.Equal(t, []string{dashboardPrefix(testOwner)}, cache.deleted)
	repo.AssertExpectations(t)
}

func TestClientService_CreateClient_Validation(t *testing.T) {
	repo := new(MockClientRepository)
	svc := NewClientService(repo, newMemCache())

	_, err := svc.CreateClient(ownerCtx(), &ClientInput{Name: " ", Phone: ""})

	appErr := requireStatus(t, err, http.StatusUnprocessableEntity)
	require.Len(t, appErr.Errors, 2)
	assert.Equal(t, "name", appErr.Errors[0].Field)
	assert.Equal(t, "phone", appErr.Errors[1].Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClientService_CreateClient_RequiresOwner(t *testing.T) {
	repo := new(MockClientRepository)
	svc := NewClientService(repo, newMemCache())

	_, err := svc.CreateClient(context.Background(), &ClientInput{Name: "Amina", Phone: "06"})

	requireStatus(t, err, http.StatusBadRequest)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClientService_UpdateClient(t *testing.T) {
	repo := new(MockClientRepository)
	svc := NewClientService(repo, newMemCache())
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&entity.Client{ID: id, UserID: testOwner, Name: "Old", Phone: "01"}, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Client")).Return(nil).Once()

	client, err := svc.UpdateClient(ownerCtx(), id, &ClientInput{Name: "New", Phone: "02"})

	require.NoError(t, err)
	assert.Equal(t, "New", client.Name)
	assert.Equal(t, "02", client.Phone)
	repo.AssertExpectations(t)
}

func TestClientService_GetClient_NotFound(t *testing.T) {
	repo := new(MockClientRepository)
	svc := NewClientService(repo, newMemCache())
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, nil).Once()

	_, err := svc.GetClient(ownerCtx(), id)

	requireStatus(t, err, http.StatusNotFound)
}

func TestClientService_DeleteClient(t *testing.T) {
	t.Run("deletes and invalidates the dashboard", func(t *testing.T) {
		repo := new(MockClientRepository)
		cache := newMemCache()
		svc := NewClientService(repo, cache)
		id := uuid.New()

		repo.On("GetByID", mock.Anything, id).Return(&entity.Client{ID: id, UserID: testOwner}, nil).Once()
		repo.On("Delete", mock.Anything, id).Return(nil).Once()

		require.NoError(t, svc.DeleteClient(ownerCtx(), id))
		assert.Equal(t, []string{dashboardPrefix(testOwner)}, cache.deleted)
		repo.AssertExpectations(t)
	})

	t.Run("client with receipts is a conflict", func(t *testing.T) {
		repo := new(MockClientRepository)
		cache := newMemCache()
		svc := NewClientService(repo, cache)
		id := uuid.New()

		repo.On("GetByID", mock.Anything, id).Return(&entity.Client{ID: id, UserID: testOwner}, nil).Once()
		repo.On("Delete", mock.Anything, id).Return(fmt.Errorf("delete client: %w", repository.ErrInUse)).Once()

		err := svc.DeleteClient(ownerCtx(), id)

		requireStatus(t, err, http.StatusConflict)
		assert.Empty(t, cache.deleted)
	})
}

func TestClientService_ListClients(t *testing.T) {
	repo := new(MockClientRepository)
	svc := NewClientService(repo, newMemCache())
	params := &pagination.PaginationParams{Page: 2, PerPage: 10}

	repo.On("List", mock.Anything, &repository.ClientFilterParams{Pagination: params, Search: "ami"}).
		Return([]entity.Client{{Name: "Amina"}}, int64(11), nil).Once()

	result, err := svc.ListClients(ownerCtx(), params, "  ami ")

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.True(t, result.Pagination.HasPrev)
	repo.AssertExpectations(t)
}
