package httpapp

import (
	"net/http"
	"strings"

	"github.com/alphabot-ai/qna/internal/auth"
	"github.com/alphabot-ai/qna/internal/model"
)

type loginRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange an account email (client_id) and password (client_secret) for a bearer token.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		loginRequest	true	"Credentials"
//	@Success		200			{object}	loginResponse
//	@Failure		400			{object}	map[string]any	"Missing credentials"
//	@Failure		401			{object}	map[string]any	"Wrong credentials"
//	@Failure		500			{object}	map[string]any	"Token creation error"
//	@Router			/login [get]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeAuthError(w, auth.ErrMissingCredentials)
		return
	}
	token, err := s.auth.Login(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "Bearer"})
}

// handleCreateAccount godoc
//
//	@Summary		Register an account
//	@Tags			Accounts
//	@Accept			json
//	@Produce		plain
//	@Param			account	body		model.Account	true	"Account"
//	@Success		200		{string}	string			"Account added"
//	@Failure		400		{string}	string			"Missing parameter"
//	@Failure		409		{string}	string			"Duplicate email"
//	@Router			/accounts [post]
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	if !s.allowWrite(w, r) {
		return
	}
	account, ok := s.readAccount(w, r)
	if !ok {
		return
	}
	if _, err := s.store.CreateAccount(r.Context(), &account); err != nil {
		s.writeStoreError(w, err, msgAccountNotFound)
		return
	}
	writeText(w, http.StatusOK, "Account added")
}

// handleGetAccount godoc
//
//	@Summary	Get an account
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		email	query		string	true	"Account email"
//	@Success	200		{object}	model.Account
//	@Failure	404		{string}	string	"Account not found"
//	@Router		/accounts [get]
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	email, ok := queryEmail(w, r)
	if !ok {
		return
	}
	account, err := s.store.GetAccountByEmail(r.Context(), email)
	if err != nil {
		s.writeStoreError(w, err, msgAccountNotFound)
		return
	}
	account.Password = ""
	writePretty(w, http.StatusOK, account)
}

// handleUpdateAccount godoc
//
//	@Summary		Replace an account
//	@Description	Replace the email and password of an account.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		plain
//	@Security		BearerAuth
//	@Param			email	query		string			true	"Account email"
//	@Param			account	body		model.Account	true	"Account"
//	@Success		200		{string}	string			"Account updated"
//	@Failure		404		{string}	string			"Account not found"
//	@Router			/accounts [put]
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}
	email, ok := queryEmail(w, r)
	if !ok {
		return
	}
	account, ok := s.readAccount(w, r)
	if !ok {
		return
	}
	if err := s.store.UpdateAccount(r.Context(), email, account); err != nil {
		s.writeStoreError(w, err, msgAccountNotFound)
		return
	}
	writeText(w, http.StatusOK, "Account updated")
}

// handleDeleteAccount godoc
//
//	@Summary	Delete an account
//	@Tags		Accounts
//	@Produce	plain
//	@Security	BearerAuth
//	@Param		email	query		string	true	"Account email"
//	@Success	200		{string}	string	"Account deleted"
//	@Failure	404		{string}	string	"Account not found"
//	@Router		/accounts [delete]
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if !s.allowWrite(w, r) {
		return
	}
	email, ok := queryEmail(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteAccount(r.Context(), email); err != nil {
		s.writeStoreError(w, err, msgAccountNotFound)
		return
	}
	writeText(w, http.StatusOK, "Account deleted")
}

// readAccount decodes an account body and replaces the password with its
// hash.
func (s *Server) readAccount(w http.ResponseWriter, r *http.Request) (model.Account, bool) {
	var account model.Account
	if err := readJSON(r.Body, &account); err != nil {
		writeBadBody(w, err)
		return model.Account{}, false
	}
	account.ID = 0
	account.Email = strings.TrimSpace(account.Email)
	if account.Email == "" || account.Password == "" {
		writeText(w, http.StatusBadRequest, msgMissingParameter)
		return model.Account{}, false
	}
	hash, err := auth.HashPassword(account.Password, s.cfg.BcryptCost)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return model.Account{}, false
	}
	account.Password = hash
	return account, true
}

func queryEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeText(w, http.StatusBadRequest, msgMissingParameter)
		return "", false
	}
	return email, true
}
