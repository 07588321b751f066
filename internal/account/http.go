// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thachln/userbase/internal/platform/middleware"
	requestutil "github.com/thachln/userbase/internal/platform/request"
	"github.com/thachln/userbase/internal/platform/respond"
	"github.com/thachln/userbase/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the account-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points: registration, login,
// password change, password reset, and current-user lookup. It is strictly
// responsible for transport concerns (status codes, validation, JSON).
type Handler struct {
	accountService *Service
	sessions       middleware.SessionVerifier
}

// NewHandler constructs a new [Handler] with its dependencies.
//
// The session verifier is needed here (not only in main) because the
// protected route group mounts its own auth guard.
func NewHandler(service *Service, sessions middleware.SessionVerifier) *Handler {
	return &Handler{accountService: service, sessions: sessions}
}

// Routes returns a [chi.Router] configured with the account routes.
//
// # Endpoints
//   - POST /register                     : Creates a new account, returns a session token.
//   - POST /login                        : Authenticates and returns a session token.
//   - POST /changepassword               : Replaces the authenticated account's password.
//   - POST /send-reset-password-email    : Emails a time-boxed reset link.
//   - POST /reset-password/{id}/{token}  : Sets a new password via the reset link.
//   - GET  /loggeduser                   : Returns the authenticated account (password excluded).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/send-reset-password-email", handler.sendResetPasswordEmail)
	router.Post("/reset-password/{id}/{token}", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(handler.sessions, handler.accountService))
		r.Post("/changepassword", handler.changePassword)
		r.Get("/loggeduser", handler.loggedUser)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type sendResetEmailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

/*
register handles the creation of a new account.

POST /register

Description: Validates input, delegates the uniqueness and confirmation gates
to the service, and responds with a session token for the new account.

Response:
  - 201: {status, message, token}
  - 400: Validation failure or email/name already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Validate the canonical (trimmed) identity values.
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, NameMinLen).
		MaxLen(FieldName, input.Name, NameMaxLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Required(FieldPasswordConfirmation, input.PasswordConfirmation)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.accountService.Register(request.Context(), RegisterInput{
		Name:                 input.Name,
		Email:                input.Email,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.SuccessToken(writer, http.StatusCreated, "User created successfully", token)
}

/*
login authenticates an account and issues a session token.

POST /login

Description: A nonexistent email and a wrong password produce the identical
401 response.

Response:
  - 200: {status, message, token}
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.accountService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.SuccessToken(writer, http.StatusOK, "User logged in successfully", token)
}

/*
changePassword updates the authenticated account's password.

POST /changepassword (Bearer session token)

Response:
  - 200: {status, message}
  - 400: Validation failure
  - 401: Missing or invalid session token
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredAuthUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Required(FieldPasswordConfirmation, input.PasswordConfirmation)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangePassword(
		request.Context(), user.ID, input.Password, input.PasswordConfirmation,
	); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, "Password changed successfully")
}

/*
sendResetPasswordEmail initiates the password recovery flow.

POST /send-reset-password-email

Description: Emails a reset link embedding the account id and a short-lived
token signed with that account's derived secret.

Response:
  - 200: {status, message}
  - 400: Unknown email or validation failure
  - 500: Email transport failure
*/
func (handler *Handler) sendResetPasswordEmail(writer http.ResponseWriter, request *http.Request) {
	var input sendResetEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, "Password reset email sent, please check your email")
}

/*
resetPassword completes the password recovery flow.

POST /reset-password/{id}/{token}

Description: The link path carries the account id and the reset token; the
body carries the new password. Possession of a valid, unexpired token for
this exact account is the sole proof of authorization.

Response:
  - 200: {status, message}
  - 400: Invalid/expired link or validation failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.Param(request, FieldID)
	token := requestutil.Param(request, FieldToken)

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldID, accountID).
		UUID(FieldID, accountID).
		Required(FieldToken, token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Required(FieldPasswordConfirmation, input.PasswordConfirmation)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ConfirmPasswordReset(
		request.Context(), accountID, token, input.Password, input.PasswordConfirmation,
	); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Success(writer, http.StatusOK, "Password reset successfully")
}

/*
loggedUser returns the authenticated account.

GET /loggeduser (Bearer session token)

Description: The auth middleware already re-fetched the account and attached
it (password excluded) to the request context.

Response:
  - 200: {status, user}
  - 401: Missing or invalid session token
*/
func (handler *Handler) loggedUser(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredAuthUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.User(writer, user)
}
