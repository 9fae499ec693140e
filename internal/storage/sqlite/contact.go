package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

const contactColumns = `id, user_id, name, phone, created_at, updated_at`

// ListContacts возвращает контакты владельца в порядке вставки.
func (s *Storage) ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error) {
	const op = "storage.sqlite.ListContacts"

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		contacts = append(contacts, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}

// SaveContact создаёт контакт владельца contact.OwnerID.
func (s *Storage) SaveContact(ctx context.Context, contact *models.Contact) error {
	const op = "storage.sqlite.SaveContact"

	now := toMillis(time.Now())

	query := `
		INSERT INTO contacts(user_id, name, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`

	if err := s.db.QueryRowContext(ctx, query, contact.OwnerID, contact.Name, contact.Phone, now, now).Scan(&contact.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	contact.CreatedAt = fromMillis(now)
	contact.UpdatedAt = fromMillis(now)

	return nil
}

// UpdateContact применяет патч одним UPDATE: чтение-изменение-запись атомарны.
// Поля, не переданные в патче, сохраняют текущие значения.
func (s *Storage) UpdateContact(ctx context.Context, id, ownerID int64, patch models.ContactPatch) (*models.Contact, error) {
	const op = "storage.sqlite.UpdateContact"

	query := `
		UPDATE contacts
		SET name = COALESCE(?, name),
		    phone = COALESCE(?, phone),
		    updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING ` + contactColumns

	row := s.db.QueryRowContext(ctx, query,
		nullString(patch.Name),
		nullString(patch.Phone),
		toMillis(time.Now()),
		id,
		ownerID,
	)

	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// DeleteContact удаляет контакт владельца.
func (s *Storage) DeleteContact(ctx context.Context, id, ownerID int64) error {
	const op = "storage.sqlite.DeleteContact"

	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*models.Contact, error) {
	var (
		c                    models.Contact
		createdAt, updatedAt int64
	)

	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)

	return &c, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *p, Valid: true}
}
