package sqlite

import "github.com/pribylovaa/go-contacts-service/internal/models"

func newUser(email string) *models.User {
	return &models.User{Email: email, PasswordHash: "hash"}
}

func newContact(ownerID int64) *models.Contact {
	return &models.Contact{OwnerID: ownerID, Name: "n", Phone: "p"}
}
