package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

// ListContacts возвращает контакты владельца в порядке создания.
func (s *Service) ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error) {
	const op = "service.contacts.ListContacts"

	contacts, err := s.storage.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}

// CreateContact создаёт контакт владельца.
func (s *Service) CreateContact(ctx context.Context, ownerID int64, name, phone string) (*models.Contact, error) {
	const op = "service.contacts.CreateContact"

	contact := &models.Contact{OwnerID: ownerID, Name: name, Phone: phone}
	if err := s.storage.SaveContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("contact_created", "op", op, "contact_id", contact.ID)

	return contact, nil
}

// UpdateContact применяет частичное обновление к контакту владельца.
// Поля патча, равные nil, сохраняют текущие значения; переданная
// пустая строка записывается как есть.
func (s *Service) UpdateContact(ctx context.Context, ownerID, id int64, patch models.ContactPatch) (*models.Contact, error) {
	const op = "service.contacts.UpdateContact"

	contact, err := s.storage.UpdateContact(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrContactNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contact, nil
}

// DeleteContact удаляет контакт владельца.
func (s *Service) DeleteContact(ctx context.Context, ownerID, id int64) error {
	const op = "service.contacts.DeleteContact"

	if err := s.storage.DeleteContact(ctx, id, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrContactNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("contact_deleted", "op", op, "contact_id", id)

	return nil
}

// DeleteUser удаляет пользователя вместе с контактами и вычищает его из кэша.
// Выпущенные ранее токены после этого резолвятся в ErrUnknownUser.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	const op = "service.contacts.DeleteUser"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownUser)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnknownUser)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if s.ucache != nil {
		if err := s.ucache.Delete(ctx, user.Email); err != nil {
			log.From(ctx).Warn("user_cache_delete_failed", "op", op, "err", err)
		}
	}

	return nil
}
