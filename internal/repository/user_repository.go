package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hanbit-travel/booking-api/internal/model"
	"github.com/hanbit-travel/booking-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user with the guest role and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, role) VALUES (?,?,?,?)",
		email, hash, name, model.RoleGuest)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT id,email,password_hash,name,role,phone,passport_no,birth_date,created_at,updated_at FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT id,email,password_hash,name,role,phone,passport_no,birth_date,created_at,updated_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var (
		u         model.User
		phone     sql.NullString
		passport  sql.NullString
		birthDate sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&phone, &passport, &birthDate, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if passport.Valid {
		u.PassportNo = &passport.String
	}
	if birthDate.Valid {
		t := birthDate.Time
		u.BirthDate = &t
	}
	return u, nil
}

// UpdateProfile saves the extended profile fields from the profile form.
// Empty values leave the existing column untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, phone, passportNo string, birthDate *time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
		   phone       = COALESCE(NULLIF(?, ''), phone),
		   passport_no = COALESCE(NULLIF(?, ''), passport_no),
		   birth_date  = COALESCE(?, birth_date)
		 WHERE id = ?`,
		phone, passportNo, birthDate, id)
	return err
}

// PromoteTx upgrades a guest to member within a transaction. Roles that
// are already member or user are left alone.
func (r *UserRepo) PromoteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=? AND role=?",
		model.RoleMember, id, model.RoleGuest)
	return err
}

// UpdateProfileTx is UpdateProfile scoped to an existing transaction, used
// by the reservation conversion so profile save, role promotion and the
// reservation insert commit together.
func (r *UserRepo) UpdateProfileTx(ctx context.Context, tx *sql.Tx, id uint64, phone, passportNo string, birthDate *time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET
		   phone       = COALESCE(NULLIF(?, ''), phone),
		   passport_no = COALESCE(NULLIF(?, ''), passport_no),
		   birth_date  = COALESCE(?, birth_date)
		 WHERE id = ?`,
		phone, passportNo, birthDate, id)
	return err
}
