package handlers

import (
	"context"
	"net/http"

	"github.com/eleven-am/eventhub/internal/service"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type AuthService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	GoogleSignIn(ctx context.Context, idToken string) (*service.Session, error)
}

// AuthRecorder counts sign-up and sign-in outcomes
type AuthRecorder interface {
	RecordAuth(method string, success bool)
}

type signUpRequest struct {
	Email     string  `json:"email" validate:"required,email,max=254"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName string  `json:"first_name" validate:"max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	PhoneNo   *string `json:"phone_no" validate:"omitempty,max=30"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type AuthHandler struct {
	auth    AuthService
	metrics AuthRecorder
}

func NewAuthHandler(auth AuthService, metrics AuthRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body signUpRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), service.SignUpInput{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		PhoneNo:   body.PhoneNo,
	})
	h.record("sign_up", err)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Created(w, session)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body signInRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), body.Email, body.Password)
	h.record("password", err)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, session)
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var body googleRequest
	if err := decodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	session, err := h.auth.GoogleSignIn(r.Context(), body.IDToken)
	h.record("google", err)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, session)
}

func (h *AuthHandler) record(method string, err error) {
	if h.metrics != nil {
		h.metrics.RecordAuth(method, err == nil)
	}
}
