package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	authorizer "github.com/localnerve/authorizer-go"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/utils"
)

// ErrIdentityUserNotFound is returned when the provider has no such account
var ErrIdentityUserNotFound = errors.New("identity provider user not found")

// SessionUser is the provider's view of an account
type SessionUser struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// IdentityProvider is the external account store
type IdentityProvider interface {
	ValidateSession(ctx context.Context, cookie string) (*SessionUser, error)
	GetUser(ctx context.Context, id string) (*SessionUser, error)
	DeleteUser(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

const adminSecretHeader = "x-authorizer-admin-secret"

const defaultIdentityTimeout = 5 * time.Second

// AuthorizerProvider talks to an Authorizer instance. Sessions go through the
// authorizer-go client; admin lookups and deletes use the admin GraphQL API.
type AuthorizerProvider struct {
	client      *authorizer.AuthorizerClient
	baseURL     string
	adminSecret string
	timeout     time.Duration
	log         *slog.Logger
}

// NewAuthorizerProvider builds the provider once at process start
func NewAuthorizerProvider(cfg *config.Config, log *slog.Logger) (*AuthorizerProvider, error) {
	if err := utils.PingAuthorizer(context.Background(), cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Info("initializing authorizer", "url", cfg.AuthzURL, "clientId", cfg.AuthzClientID)
	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, cfg.AuthzURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}

	return &AuthorizerProvider{
		client:      client,
		baseURL:     strings.TrimSuffix(cfg.AuthzURL, "/"),
		adminSecret: cfg.AuthzAdminSecret,
		timeout:     defaultIdentityTimeout,
		log:         log,
	}, nil
}

// ValidateSession validates a cookie_session value
func (p *AuthorizerProvider) ValidateSession(ctx context.Context, cookie string) (*SessionUser, error) {
	res, err := p.client.ValidateSession(&authorizer.ValidateSessionInput{Cookie: cookie})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	// The SDK user carries pointer fields; round-trip through JSON into ours.
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	var user SessionUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("session user has no id")
	}
	return &user, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// GetUser looks up an account with the admin API
func (p *AuthorizerProvider) GetUser(ctx context.Context, id string) (*SessionUser, error) {
	var data struct {
		User *SessionUser `json:"_user"`
	}
	err := p.admin(ctx, graphQLRequest{
		Query:     `query getUser($id: String!) { _user(params: {id: $id}) { id email roles } }`,
		Variables: map[string]any{"id": id},
	}, &data)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrIdentityUserNotFound
		}
		return nil, err
	}
	if data.User == nil || data.User.ID == "" {
		return nil, ErrIdentityUserNotFound
	}
	return data.User, nil
}

// DeleteUser removes the account. The admin API deletes by email, so the
// account is resolved first; an already missing account is not an error.
func (p *AuthorizerProvider) DeleteUser(ctx context.Context, id string) error {
	user, err := p.GetUser(ctx, id)
	if errors.Is(err, ErrIdentityUserNotFound) {
		p.log.Info("identity provider account already absent", "userId", id)
		return nil
	}
	if err != nil {
		return err
	}

	var data struct {
		DeleteUser struct {
			Message string `json:"message"`
		} `json:"_delete_user"`
	}
	return p.admin(ctx, graphQLRequest{
		Query:     `mutation deleteUser($email: String!) { _delete_user(params: {email: $email}) { message } }`,
		Variables: map[string]any{"email": user.Email},
	}, &data)
}

// Ping checks the provider is reachable
func (p *AuthorizerProvider) Ping(ctx context.Context) error {
	return utils.PingAuthorizer(ctx, p.baseURL)
}

func (p *AuthorizerProvider) admin(ctx context.Context, req graphQLRequest, out any) error {
	if p.adminSecret == "" {
		return fmt.Errorf("authorizer admin secret is not configured")
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(p.baseURL+"/graphql").
		Set(adminSecretHeader, p.adminSecret).
		JSON(req).
		Timeout(timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("authorizer admin request: %w", errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		return fmt.Errorf("authorizer admin request: status %d", code)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("authorizer admin response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("authorizer admin error: %s", envelope.Errors[0].Message)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
