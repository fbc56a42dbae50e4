package circle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names backing the application-level uniqueness checks. The
// constraints are the authoritative guard; the in-transaction checks are a
// fast path.
const (
	constraintMemberUser = "circle_members_circle_id_user_id_key"
	constraintMemberSlot = "circle_members_circle_id_slot_number_key"
)

// PostgresStore persists circles and memberships in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed circle store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// InTx runs fn inside a single transaction, rolling back on any error.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetCircle fetches a circle with its members loaded.
func (s *PostgresStore) GetCircle(ctx context.Context, id string) (Circle, error) {
	c, err := getCircle(ctx, s.db, id)
	if err != nil {
		return Circle{}, err
	}
	members, err := listMembers(ctx, s.db, c.ID)
	if err != nil {
		return Circle{}, err
	}
	c.Members = members
	return c, nil
}

// ListCircles returns every circle with members loaded.
func (s *PostgresStore) ListCircles(ctx context.Context) ([]Circle, error) {
	return s.listCircles(ctx, `SELECT `+circleColumns+` FROM circles ORDER BY created_at`)
}

// ListCirclesByUser returns the circles the user belongs to, optionally
// filtered by circle status.
func (s *PostgresStore) ListCirclesByUser(ctx context.Context, userID, status string) ([]Circle, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}
	query := `SELECT ` + circleColumns + ` FROM circles c
        WHERE EXISTS (SELECT 1 FROM circle_members m WHERE m.circle_id = c.id AND m.user_id = $1)
          AND ($2 = '' OR c.status = $2)
        ORDER BY c.created_at`
	return s.listCircles(ctx, query, uid, status)
}

func (s *PostgresStore) listCircles(ctx context.Context, query string, args ...any) ([]Circle, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var circles []Circle
	for rows.Next() {
		c, err := scanCircle(rows)
		if err != nil {
			return nil, err
		}
		circles = append(circles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range circles {
		members, err := listMembers(ctx, s.db, circles[i].ID)
		if err != nil {
			return nil, err
		}
		circles[i].Members = members
	}
	return circles, nil
}

type pgTx struct {
	tx pgx.Tx
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const circleColumns = `id, name, owner_id, amount, duration, start_date, end_date, status, created_at`

const memberColumns = `m.id, m.circle_id, m.user_id, u.name, u.phone, m.slot_number,
        m.status, m.payment_status, m.payout_date, m.admin_fees, m.created_at`

func (t *pgTx) GetCircle(ctx context.Context, id string) (Circle, error) {
	return getCircle(ctx, t.tx, id)
}

func (t *pgTx) InsertCircle(ctx context.Context, c Circle) error {
	circleID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(c.OwnerID)
	if err != nil {
		return ErrUserNotFound
	}
	var endDate *time.Time
	if c.EndDate != nil {
		utc := c.EndDate.UTC()
		endDate = &utc
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO circles (id, name, owner_id, amount, duration, start_date, end_date, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		circleID, c.Name, ownerID, c.Amount, c.Duration, c.StartDate.UTC(), endDate, c.Status, c.CreatedAt.UTC())
	return err
}

func (t *pgTx) UpdateCircle(ctx context.Context, id string, fields CircleUpdate) error {
	circleID, err := uuid.Parse(id)
	if err != nil {
		return ErrCircleNotFound
	}
	cmd, err := t.tx.Exec(ctx, `UPDATE circles SET
            name = COALESCE($2, name),
            amount = COALESCE($3, amount),
            duration = COALESCE($4, duration),
            start_date = COALESCE($5, start_date),
            end_date = COALESCE($6, end_date),
            status = COALESCE($7, status)
        WHERE id = $1`,
		circleID, fields.Name, fields.Amount, fields.Duration, fields.StartDate, fields.EndDate, fields.Status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCircleNotFound
	}
	return nil
}

func (t *pgTx) DeleteCircle(ctx context.Context, id string) error {
	circleID, err := uuid.Parse(id)
	if err != nil {
		return ErrCircleNotFound
	}
	// Memberships go with the circle via the FK cascade.
	cmd, err := t.tx.Exec(ctx, `DELETE FROM circles WHERE id = $1`, circleID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCircleNotFound
	}
	return nil
}

func (t *pgTx) ListMembers(ctx context.Context, circleID string) ([]Member, error) {
	return listMembers(ctx, t.tx, circleID)
}

func (t *pgTx) GetMember(ctx context.Context, id string) (Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return Member{}, ErrMemberNotFound
	}
	row := t.tx.QueryRow(ctx, `SELECT `+memberColumns+`
        FROM circle_members m INNER JOIN users u ON u.id = m.user_id
        WHERE m.id = $1`, memberID)
	return scanMember(row)
}

func (t *pgTx) MemberByUser(ctx context.Context, circleID, userID string) (Member, error) {
	cid, err := uuid.Parse(circleID)
	if err != nil {
		return Member{}, ErrMemberNotFound
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Member{}, ErrMemberNotFound
	}
	row := t.tx.QueryRow(ctx, `SELECT `+memberColumns+`
        FROM circle_members m INNER JOIN users u ON u.id = m.user_id
        WHERE m.circle_id = $1 AND m.user_id = $2`, cid, uid)
	return scanMember(row)
}

func (t *pgTx) SlotHolder(ctx context.Context, circleID string, slot int) (Member, error) {
	cid, err := uuid.Parse(circleID)
	if err != nil {
		return Member{}, ErrMemberNotFound
	}
	row := t.tx.QueryRow(ctx, `SELECT `+memberColumns+`
        FROM circle_members m INNER JOIN users u ON u.id = m.user_id
        WHERE m.circle_id = $1 AND m.slot_number = $2
        FOR UPDATE OF m`, cid, slot)
	return scanMember(row)
}

func (t *pgTx) InsertMember(ctx context.Context, m Member) error {
	memberID, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	cid, err := uuid.Parse(m.CircleID)
	if err != nil {
		return ErrCircleNotFound
	}
	uid, err := uuid.Parse(m.UserID)
	if err != nil {
		return ErrUserNotFound
	}
	var payoutDate *time.Time
	if m.PayoutDate != nil {
		utc := m.PayoutDate.UTC()
		payoutDate = &utc
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO circle_members
            (id, circle_id, user_id, slot_number, status, payment_status, payout_date, admin_fees, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		memberID, cid, uid, m.SlotNumber, m.Status, m.PaymentStatus, payoutDate, m.AdminFees, m.CreatedAt.UTC())
	return translateMemberConstraint(err)
}

func (t *pgTx) UpdateMember(ctx context.Context, id string, fields MemberUpdate) error {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return ErrMemberNotFound
	}
	cmd, err := t.tx.Exec(ctx, `UPDATE circle_members SET
            slot_number = COALESCE($2, slot_number),
            status = COALESCE($3, status),
            payment_status = COALESCE($4, payment_status),
            payout_date = COALESCE($5, payout_date),
            admin_fees = COALESCE($6, admin_fees)
        WHERE id = $1`,
		memberID, fields.SlotNumber, fields.Status, fields.PaymentStatus, fields.PayoutDate, fields.AdminFees)
	if err != nil {
		return translateMemberConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (t *pgTx) DeleteMember(ctx context.Context, id string) error {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return ErrMemberNotFound
	}
	cmd, err := t.tx.Exec(ctx, `DELETE FROM circle_members WHERE id = $1`, memberID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func getCircle(ctx context.Context, q querier, id string) (Circle, error) {
	circleID, err := uuid.Parse(id)
	if err != nil {
		return Circle{}, ErrCircleNotFound
	}
	row := q.QueryRow(ctx, `SELECT `+circleColumns+` FROM circles WHERE id = $1`, circleID)
	return scanCircle(row)
}

func listMembers(ctx context.Context, q querier, circleID string) ([]Member, error) {
	cid, err := uuid.Parse(circleID)
	if err != nil {
		return nil, ErrCircleNotFound
	}
	rows, err := q.Query(ctx, `SELECT `+memberColumns+`
        FROM circle_members m INNER JOIN users u ON u.id = m.user_id
        WHERE m.circle_id = $1
        ORDER BY m.created_at, m.id`, cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanCircle(row pgx.Row) (Circle, error) {
	var (
		id      uuid.UUID
		ownerID uuid.UUID
		c       Circle
		endDate *time.Time
	)
	if err := row.Scan(&id, &c.Name, &ownerID, &c.Amount, &c.Duration, &c.StartDate, &endDate, &c.Status, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Circle{}, ErrCircleNotFound
		}
		return Circle{}, err
	}
	c.ID = id.String()
	c.OwnerID = ownerID.String()
	c.StartDate = c.StartDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	if endDate != nil {
		utc := endDate.UTC()
		c.EndDate = &utc
	}
	return c, nil
}

func scanMember(row pgx.Row) (Member, error) {
	var (
		id         uuid.UUID
		circleID   uuid.UUID
		userID     uuid.UUID
		m          Member
		payoutDate *time.Time
	)
	if err := row.Scan(&id, &circleID, &userID, &m.UserName, &m.UserPhone, &m.SlotNumber,
		&m.Status, &m.PaymentStatus, &payoutDate, &m.AdminFees, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	m.ID = id.String()
	m.CircleID = circleID.String()
	m.UserID = userID.String()
	m.CreatedAt = m.CreatedAt.UTC()
	if payoutDate != nil {
		utc := payoutDate.UTC()
		m.PayoutDate = &utc
	}
	return m, nil
}

// translateMemberConstraint reconciles storage-level uniqueness violations
// into the same domain errors the pre-transaction checks produce, so a
// lost check-then-act race still surfaces as a Conflict.
func translateMemberConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case constraintMemberUser:
			return ErrAlreadyMember
		case constraintMemberSlot:
			return ErrSlotTaken
		}
	}
	return err
}
