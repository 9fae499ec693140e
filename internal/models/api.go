// Входные/выходные модели REST API.
package models

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (RegisterRequest) Required() []string { return []string{"email", "password"} }
func (LoginRequest) Required() []string    { return []string{"email", "password"} }

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ContactCreateRequest - оба поля обязательны, пустые строки допустимы.
type ContactCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (ContactCreateRequest) Required() []string { return []string{"name", "phone"} }

// ContactUpdateRequest - отсутствующее или null поле не меняется.
type ContactUpdateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type ContactResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}
