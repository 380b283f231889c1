package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/usecase"
)

// AccountHandler обрабатывает регистрацию, вход, профиль и подписки
type AccountHandler struct {
	accounts usecase.AccountUseCase
	logger   *slog.Logger
}

func NewAccountHandler(accounts usecase.AccountUseCase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type signUpRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserName  string `json:"user_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type followRequest struct {
	UserName string `json:"user_name"`
}

type interestRequest struct {
	HashTag string `json:"hashtag"`
}

type profileResponse struct {
	User bool            `json:"user"`
	Data *domain.Profile `json:"data"`
}

// SignUp — POST /account/sign-up
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req, "first_name", "last_name", "user_name", "email", "password"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	token, err := h.accounts.SignUp(r.Context(), usecase.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: token}, h.logger)
}

// SignIn — POST /account/sign-in
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req, "email", "password"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	token, err := h.accounts.SignIn(r.Context(), usecase.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: token}, h.logger)
}

// KakaoSignIn — POST /account/kakao, токен Kakao приходит в Authorization
func (h *AccountHandler) KakaoSignIn(w http.ResponseWriter, r *http.Request) {
	kakaoToken := bearerToken(r)
	if kakaoToken == "" {
		respondWithAppError(w, r, domain.ErrInvalidKakaoToken, h.logger)
		return
	}

	token, err := h.accounts.KakaoSignIn(r.Context(), kakaoToken)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: token}, h.logger)
}

// Profile — GET /account?user_name=
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	query := r.URL.Query()
	userName := query.Get("user_name")
	if userName == "" {
		userName = query.Get("user")
	}

	profile, isOwner, err := h.accounts.Profile(r.Context(), userName, viewer)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profileResponse{User: isOwner, Data: profile}, h.logger)
}

// Follow — POST /account/following
func (h *AccountHandler) Follow(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	var req followRequest
	if err := decodeJSON(r, &req, "user_name"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	status, err := h.accounts.ToggleFollow(r.Context(), viewer, req.UserName)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, statusResponse{Status: status}, h.logger)
}

// Interest — POST /account/interest
func (h *AccountHandler) Interest(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	var req interestRequest
	if err := decodeJSON(r, &req, "hashtag"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	status, err := h.accounts.ToggleInterest(r.Context(), viewer, req.HashTag)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, statusResponse{Status: status}, h.logger)
}
