package repository

import (
	"context"
	"fmt"
	"strings"

	"chatfuse/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connectionColumns maps API field names to their columns. Only these fields
// are updatable.
var connectionColumns = map[string]string{
	"name":              "name",
	"type":              "type",
	"status":            "status",
	"webhook":           "webhook",
	"qrPrivacy":         "qrprivacy",
	"customTitle":       "customtitle",
	"customLogo":        "customlogo",
	"customDescription": "customdescription",
}

const connectionFields = "id, userid, name, type, status, webhook, qrprivacy, customtitle, customlogo, customdescription, created_at, updated_at"

type ConnectionRepository struct {
	db *pgxpool.Pool
}

func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Insert(ctx context.Context, conn *entities.Connection) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO connections (id, userid, name, type, status, webhook, qrprivacy, customtitle, customlogo, customdescription)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		conn.ID, conn.UserID, conn.Name, conn.Type, conn.Status, conn.Webhook,
		conn.QRPrivacy, conn.CustomTitle, conn.CustomLogo, conn.CustomDescription).
		Scan(&conn.CreatedAt, &conn.UpdatedAt)
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID int) ([]entities.Connection, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+connectionFields+" FROM connections WHERE userid = $1 ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []entities.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *conn)
	}
	return conns, rows.Err()
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*entities.Connection, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+connectionFields+" FROM connections WHERE id = $1", id)

	conn, err := scanConnection(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Update builds a single dynamic UPDATE over the allowed fields and bumps
// updated_at. An empty field set is a caller error.
func (r *ConnectionRepository) Update(ctx context.Context, id string, fields map[string]string) (*entities.Connection, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	for field, value := range fields {
		column, ok := connectionColumns[field]
		if !ok {
			continue
		}
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if len(setClauses) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE connections SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), connectionFields)

	conn, err := scanConnection(r.db.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM connections WHERE id = $1", id)
	return err
}

func scanConnection(row pgx.Row) (*entities.Connection, error) {
	var conn entities.Connection
	err := row.Scan(&conn.ID, &conn.UserID, &conn.Name, &conn.Type, &conn.Status,
		&conn.Webhook, &conn.QRPrivacy, &conn.CustomTitle, &conn.CustomLogo,
		&conn.CustomDescription, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}
