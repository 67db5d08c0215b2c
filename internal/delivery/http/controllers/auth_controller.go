package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"crewplanner/internal/delivery/http/helpers"
	"crewplanner/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthController issues session tokens for roster members.
type AuthController struct {
	logger *slog.Logger
	auth   domain.AuthService
}

// NewAuthController returns an AuthController.
func NewAuthController(logger *slog.Logger, auth domain.AuthService) *AuthController {
	return &AuthController{logger: logger, auth: auth}
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(l.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login.
// swagger:model LoginResponse
type LoginResponse struct {
	Token     string             `json:"token"`
	TokenType string             `json:"token_type"`
	Member    *domain.TeamMember `json:"member"`
}

// Login handles POST /auth/login.
//
//	@Summary      Authenticate a roster member
//	@Tags         auth
//	@Accept       json
//	@Produce      json
//	@Success      200 {object} helpers.APIResponse{data=LoginResponse}
//	@Failure      400 {object} helpers.APIResponse
//	@Failure      401 {object} helpers.APIResponse
//	@Router       /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	token, member, err := c.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid email or password")
			return
		}
		c.logger.Error("login failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		Member:    member,
	})
}
