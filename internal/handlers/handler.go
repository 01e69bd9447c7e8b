package handlers

import (
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/token"
)

type Handler struct {
	Auth  *AuthHandler
	Users *UserHandler
	Admin *AdminHandler
}

func NewHandler(st store.Store, tokens *token.Service) *Handler {
	return &Handler{
		Auth:  &AuthHandler{Store: st, Tokens: tokens},
		Users: &UserHandler{Store: st},
		Admin: &AdminHandler{Store: st},
	}
}
