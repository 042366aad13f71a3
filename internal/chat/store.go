package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when the referenced message or poll does not exist.
var ErrNotFound = errors.New("not found")

// Store is the PostgreSQL-backed Service implementation.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Service = (*Store)(nil)

func (s *Store) History(ctx context.Context, streamID int64, page, pageSize int) ([]Message, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.pool.Query(ctx, `
		SELECT id, stream_id, user_id, content, message_type, emoji, pinned, deleted, created_at
		FROM chat_messages
		WHERE stream_id = $1 AND NOT deleted
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, streamID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, scanErr := scanMessage(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func (s *Store) SaveMessage(ctx context.Context, req MessageRequest) (*Message, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (stream_id, user_id, content, message_type, emoji)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, stream_id, user_id, content, message_type, emoji, pinned, deleted, created_at`,
		req.StreamID, req.UserID, req.Content, string(req.Type), nullable(req.Emoji))
	msg, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *Store) SaveReaction(ctx context.Context, streamID, userID int64, reaction ReactionType) (*Reaction, error) {
	r := Reaction{StreamID: streamID, UserID: userID, Type: reaction}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_reactions (stream_id, user_id, reaction_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, streamID, userID, string(reaction)).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reaction: %w", err)
	}
	return &r, nil
}

func (s *Store) CreatePoll(ctx context.Context, req PollRequest) (*Poll, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	poll := Poll{
		StreamID:             req.StreamID,
		CreatedBy:            req.CreatedBy,
		Question:             req.Question,
		Description:          req.Description,
		AllowMultipleChoices: req.AllowMultipleChoices,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO polls (stream_id, created_by, question, description, allow_multiple_choices)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		req.StreamID, req.CreatedBy, req.Question, nullable(req.Description), req.AllowMultipleChoices,
	).Scan(&poll.ID, &poll.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert poll: %w", err)
	}

	for i, text := range req.Options {
		opt := PollOption{Text: text, Position: i}
		if err := tx.QueryRow(ctx, `
			INSERT INTO poll_options (poll_id, text, position)
			VALUES ($1, $2, $3)
			RETURNING id`, poll.ID, text, i).Scan(&opt.ID); err != nil {
			return nil, fmt.Errorf("insert poll option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &poll, nil
}

func (s *Store) Vote(ctx context.Context, pollID, userID int64, optionIDs []int64) error {
	if len(optionIDs) == 0 {
		return errors.New("no option ids")
	}

	var allowMultiple bool
	err := s.pool.QueryRow(ctx, `SELECT allow_multiple_choices FROM polls WHERE id = $1`, pollID).Scan(&allowMultiple)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load poll: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if !allowMultiple {
		// Single-choice polls replace the user's previous vote.
		if _, err := tx.Exec(ctx, `DELETE FROM poll_votes WHERE poll_id = $1 AND user_id = $2`, pollID, userID); err != nil {
			return fmt.Errorf("clear previous vote: %w", err)
		}
		optionIDs = optionIDs[:1]
	}

	for _, optionID := range optionIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO poll_votes (poll_id, option_id, user_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (option_id, user_id) DO NOTHING`, pollID, optionID, userID); err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) Poll(ctx context.Context, pollID int64) (*Poll, error) {
	var (
		poll Poll
		desc sql.NullString
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, stream_id, created_by, question, description, allow_multiple_choices, created_at
		FROM polls WHERE id = $1`, pollID,
	).Scan(&poll.ID, &poll.StreamID, &poll.CreatedBy, &poll.Question, &desc, &poll.AllowMultipleChoices, &poll.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load poll: %w", err)
	}
	if desc.Valid {
		poll.Description = desc.String
	}

	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.text, o.position, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN poll_votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.position
		ORDER BY o.position`, pollID)
	if err != nil {
		return nil, fmt.Errorf("load poll options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt PollOption
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Position, &opt.Votes); err != nil {
			return nil, err
		}
		poll.Options = append(poll.Options, opt)
	}
	return &poll, rows.Err()
}

func (s *Store) PinMessage(ctx context.Context, messageID int64) (*Message, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE chat_messages SET pinned = true
		WHERE id = $1
		RETURNING id, stream_id, user_id, content, message_type, emoji, pinned, deleted, created_at`, messageID)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pin message: %w", err)
	}
	return msg, nil
}

func (s *Store) DeleteMessage(ctx context.Context, messageID int64) (*Message, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE chat_messages SET deleted = true
		WHERE id = $1
		RETURNING id, stream_id, user_id, content, message_type, emoji, pinned, deleted, created_at`, messageID)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return msg, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var (
		msg     Message
		msgType string
		emoji   sql.NullString
	)
	if err := row.Scan(&msg.ID, &msg.StreamID, &msg.UserID, &msg.Content, &msgType, &emoji, &msg.Pinned, &msg.Deleted, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.Type = MessageType(msgType)
	if emoji.Valid {
		msg.Emoji = emoji.String
	}
	return &msg, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
