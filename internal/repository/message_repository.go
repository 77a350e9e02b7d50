package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// MessageRepository provides data access for chat messages.
type MessageRepository struct {
	pool PoolInterface
}

// NewMessageRepository creates a new MessageRepository with the given pool.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// NewMessageRepositoryWithPool creates a new MessageRepository with a custom pool interface.
func NewMessageRepositoryWithPool(pool PoolInterface) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert stores msg and fills in its id and creation time.
// Returns service.ErrDonationNotFound or service.ErrUserNotFound when a reference is dangling.
func (r *MessageRepository) Insert(ctx context.Context, msg *model.Message) error {
	query, args, err := psql().
		Insert("messages").
		Columns("from_user_id", "to_user_id", "donation_id", "text").
		Values(msg.FromUserID, msg.ToUserID, msg.DonationID, msg.Text).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert message query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgForeignKeyViolation {
			if strings.Contains(pgErr.ConstraintName, "donation") {
				return service.ErrDonationNotFound
			}
			return service.ErrUserNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListConversation returns the messages about a donation that the user sent or received,
// oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, donationID, userID int64) ([]model.Message, error) {
	query, args, err := psql().
		Select("id", "from_user_id", "to_user_id", "donation_id", "text", "created_at").
		From("messages").
		Where(sq.Eq{"donation_id": donationID}).
		Where(sq.Or{sq.Eq{"from_user_id": userID}, sq.Eq{"to_user_id": userID}}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conversation query: %w", err)
	}

	msgs := []model.Message{}
	if err := pgxscan.Select(ctx, r.pool, &msgs, query, args...); err != nil {
		return nil, fmt.Errorf("list conversation for donation %d: %w", donationID, err)
	}
	return msgs, nil
}

// chatMessagesSQL joins each of the user's messages with the profile on the other side.
const chatMessagesSQL = `SELECT m.donation_id,
       u.id AS other_user_id,
       u.name AS other_user_name,
       u.image_url AS other_user_image,
       m.text,
       m.created_at
FROM messages m
JOIN users u ON u.id = CASE WHEN m.from_user_id = $1 THEN m.to_user_id ELSE m.from_user_id END
WHERE m.from_user_id = $1 OR m.to_user_id = $1
ORDER BY m.created_at DESC, m.id DESC`

// ListChatMessages returns every message the user took part in, newest first.
func (r *MessageRepository) ListChatMessages(ctx context.Context, userID int64) ([]model.ChatMessageRow, error) {
	rows := []model.ChatMessageRow{}
	if err := pgxscan.Select(ctx, r.pool, &rows, chatMessagesSQL, userID); err != nil {
		return nil, fmt.Errorf("list chat messages for user %d: %w", userID, err)
	}
	return rows, nil
}

// ListClaimedDonations returns the donations last claimed by the user together with their owners.
func (r *MessageRepository) ListClaimedDonations(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error) {
	query, args, err := psql().
		Select(
			"d.id AS donation_id",
			"u.id AS owner_id",
			"u.name AS owner_name",
			"u.image_url AS owner_image",
			"d.updated_at",
		).
		From("donations d").
		Join("users u ON u.id = d.user_id").
		Where(sq.Eq{"d.claimed_by": userID}).
		OrderBy("d.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build claimed donations query: %w", err)
	}

	rows := []model.ClaimedDonationRow{}
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list claimed donations for user %d: %w", userID, err)
	}
	return rows, nil
}
