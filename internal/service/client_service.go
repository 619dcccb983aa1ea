package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/repository"
	customError "github.com/lumapay/paylink/pkg/errors"
)

// ClientService handles merchant registration, authentication and profile
// management. New accounts start unapproved and stay locked out until an
// admin approves them.
type ClientService struct {
	ClientRepo repository.ClientRepository
	sessions   *SessionStore
}

func NewClientService(clientRepo repository.ClientRepository, sessions *SessionStore) *ClientService {
	return &ClientService{
		ClientRepo: clientRepo,
		sessions:   sessions,
	}
}

// Register creates a new, unapproved client account. All user input
// problems come back as one validation message list.
func (s *ClientService) Register(ctx context.Context, req *domain.RegisterClientRequest) (*domain.Client, error) {
	var messages []string

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" {
		messages = append(messages, "Name is required.")
	}
	if req.Password == "" {
		messages = append(messages, "Password is required.")
	}

	if name != "" {
		if _, err := s.ClientRepo.GetByName(ctx, name); err == nil {
			messages = append(messages, "A client with that name already exists.")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
	}
	if email != "" {
		if _, err := s.ClientRepo.GetByEmail(ctx, email); err == nil {
			messages = append(messages, "The email address is already in use.")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	if len(messages) > 0 {
		return nil, customError.NewValidationError(messages...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Approved:     false,
		Blocked:      false,
	}

	if err := s.ClientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Login authenticates by email and password. Blocked and unapproved
// accounts are rejected before the password is even checked.
func (s *ClientService) Login(ctx context.Context, req *domain.ClientLoginRequest) (*domain.LoginResponse, error) {
	client, err := s.ClientRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidCredentials, "Email not found", customError.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if client.Blocked {
		return nil, customError.NewBusinessError(
			customError.ErrCodeClientBlocked, "Account is blocked", customError.ErrClientBlocked)
	}
	if !client.Approved {
		return nil, customError.NewBusinessError(
			customError.ErrCodeClientNotApproved, "Account is pending approval", customError.ErrClientNotApproved)
	}

	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Password)) != nil {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidCredentials, "Incorrect password", customError.ErrInvalidCredentials)
	}

	token, err := s.sessions.Create(ctx, SessionScopeClient, client.ID)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResponse{Token: token, Client: client}, nil
}

// Logout destroys the session token
func (s *ClientService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, SessionScopeClient, token)
}

// Get retrieves a client by id
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.ClientRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapClientNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

// UpdateProfile applies partial changes to the caller's own account.
// The approval flag is ignored here; only admins flip it.
func (s *ClientService) UpdateProfile(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.Client, error) {
	req.Approved = nil
	return s.applyUpdate(ctx, id, req)
}

func (s *ClientService) applyUpdate(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var messages []string

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			messages = append(messages, "Name cannot be empty.")
		} else if name != client.Name {
			if other, err := s.ClientRepo.GetByName(ctx, name); err == nil && other.ID != id {
				messages = append(messages, "The name is already in use by another client.")
			} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapDatabaseError(err)
			}
			client.Name = name
		}
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.EqualFold(email, client.Email) {
			if other, err := s.ClientRepo.GetByEmail(ctx, email); err == nil && other.ID != id {
				messages = append(messages, "The email is already in use by another client.")
			} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapDatabaseError(err)
			}
		}
		client.Email = email
	}

	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		client.PasswordHash = string(hash)
	}

	if req.Approved != nil {
		client.Approved = *req.Approved
	}

	if len(messages) > 0 {
		return nil, customError.NewValidationError(messages...)
	}

	if err := s.ClientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
