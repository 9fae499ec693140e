package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

const contactColumns = `id, user_id, name, phone, created_at, updated_at`

// ListContacts возвращает контакты владельца в порядке вставки.
func (s *Storage) ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error) {
	const op = "storage.postgres.ListContacts"

	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, ownerID)
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
	const op = "storage.postgres.SaveContact"

	query := `
		INSERT INTO contacts(user_id, name, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, contact.OwnerID, contact.Name, contact.Phone).
		Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateContact применяет патч одним UPDATE: строка блокируется на время
// оператора, конкурентные патчи сериализуются (last-writer-wins по полю).
func (s *Storage) UpdateContact(ctx context.Context, id, ownerID int64, patch models.ContactPatch) (*models.Contact, error) {
	const op = "storage.postgres.UpdateContact"

	query := `
		UPDATE contacts
		SET name = COALESCE($3::text, name),
		    phone = COALESCE($4::text, phone),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	c, err := scanContact(s.db.QueryRow(ctx, query, id, ownerID, patch.Name, patch.Phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// DeleteContact удаляет контакт владельца.
func (s *Storage) DeleteContact(ctx context.Context, id, ownerID int64) error {
	const op = "storage.postgres.DeleteContact"

	tag, err := s.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact

	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}
