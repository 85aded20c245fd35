package client

import (
	"errors"
	"fmt"
)

// APIError is a normalized failure from the Studio MIA API. Status, Title
// and Detail come from the first entry of the server's error list when one
// is present, otherwise from a fixed per-operation fallback.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status,omitempty"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with
// the given HTTP status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// Detail extracts the server-supplied detail message from err, falling back
// to the given message when err carries none.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// Fallback messages, one per operation type.
const (
	MsgLoginFailed    = "Erro ao fazer login."
	MsgRegisterFailed = "Erro ao cadastrar usuário."
	MsgProfileFailed  = "Erro ao buscar perfil."
	MsgUploadFailed   = "Erro ao carregar o documento. Tente novamente."
	MsgCreateFailed   = "Erro ao criar o plano de aula. Tente novamente."
	MsgFetchFailed    = "Erro ao carregar planos de aula."
)
