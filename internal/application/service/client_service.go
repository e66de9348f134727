package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/infrastructure/cache"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// ClientService handles client directory operations
type ClientService struct {
	clientRepo repository.ClientRepository
	cache      cache.Cache
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, c cache.Cache) *ClientService {
	return &ClientService{clientRepo: clientRepo, cache: c}
}

// ClientInput carries the editable client fields
type ClientInput struct {
	Name  string
	Phone string
}

func (in *ClientInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	var fields []apperror.FieldError
	if in.Name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if in.Phone == "" {
		fields = append(fields, apperror.FieldError{Field: "phone", Message: "Phone is required"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput) (*entity.Client, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	client := &entity.Client{
		UserID: ownerID,
		Name:   input.Name,
		Phone:  input.Phone,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache, ownerID)
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists the owner's clients ordered by name
func (s *ClientService) ListClients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, &repository.ClientFilterParams{
		Pagination: params,
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(clients, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateClient replaces a client's name and phone
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = input.Name
	client.Phone = input.Phone
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient deletes a client without receipts
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return err
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return apperror.NewConflictError("Client has receipts and cannot be deleted")
		}
		return err
	}

	invalidateDashboard(ctx, s.cache, client.UserID)
	return nil
}
