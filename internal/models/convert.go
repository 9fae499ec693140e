package models

// TokenToResponse конвертирует выпущенный токен в ответ register/login.
func TokenToResponse(t *Token) TokenResponse {
	return TokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType}
}

// ContactToResponse конвертирует контакт в REST-представление.
// OwnerID наружу не отдаётся.
func ContactToResponse(c *Contact) ContactResponse {
	return ContactResponse{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

// ContactsToResponse конвертирует список; пустой список даёт [] (не null).
func ContactsToResponse(cs []Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(cs))
	for i := range cs {
		out = append(out, ContactToResponse(&cs[i]))
	}
	return out
}

// Patch конвертирует запрос обновления в доменный патч.
func (r ContactUpdateRequest) Patch() ContactPatch {
	return ContactPatch{Name: r.Name, Phone: r.Phone}
}
