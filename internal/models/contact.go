package models

import "time"

// Contact - контакт, принадлежащий ровно одному пользователю (OwnerID).
type Contact struct {
	ID        int64
	OwnerID   int64
	Name      string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactPatch - частичное обновление контакта.
// nil-поле означает "не передано" и сохраняет текущее значение.
type ContactPatch struct {
	Name  *string
	Phone *string
}
