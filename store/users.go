package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"farmfinance/backend/models"
)

const userColumns = `id, username, email, password_hash, role, is_active, auth_provider, last_login,
	phone_number, profile_picture, location, preferences, farm_details, created_at, updated_at`

func (s *Store) scanUser(row rowScanner) (models.User, error) {
	var (
		u                            models.User
		lastLogin                    sql.NullTime
		phone                        string
		location, prefs, farmDetails string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.AuthProvider, &lastLogin,
		&phone, &u.ProfilePicture, &location, &prefs, &farmDetails, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	u.PhoneNumber, err = s.decryptField(phone)
	if err != nil {
		return u, fmt.Errorf("decrypt phone number of user %s: %w", u.ID, err)
	}

	u.Preferences = models.DefaultPreferences()
	u.FarmDetails = models.DefaultFarmDetails()
	if err := json.Unmarshal([]byte(location), &u.Location); err != nil {
		return u, fmt.Errorf("decode location of user %s: %w", u.ID, err)
	}
	if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
		return u, fmt.Errorf("decode preferences of user %s: %w", u.ID, err)
	}
	if err := json.Unmarshal([]byte(farmDetails), &u.FarmDetails); err != nil {
		return u, fmt.Errorf("decode farm details of user %s: %w", u.ID, err)
	}
	return u, nil
}

func (s *Store) encryptField(value string) (string, error) {
	if s.cipher == nil || value == "" {
		return value, nil
	}
	return s.cipher.Encrypt(value)
}

func (s *Store) decryptField(value string) (string, error) {
	if s.cipher == nil || value == "" {
		return value, nil
	}
	return s.cipher.Decrypt(value)
}

// userArgs returns the mutable column values of u in userColumns order,
// starting at username and ending at farm_details.
func (s *Store) userArgs(u *models.User) ([]interface{}, error) {
	phone, err := s.encryptField(u.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt phone number: %w", err)
	}
	location, err := encodeJSON(u.Location)
	if err != nil {
		return nil, err
	}
	prefs, err := encodeJSON(u.Preferences)
	if err != nil {
		return nil, err
	}
	if u.FarmDetails.PrimaryCrops == nil {
		u.FarmDetails.PrimaryCrops = []string{}
	}
	farm, err := encodeJSON(u.FarmDetails)
	if err != nil {
		return nil, err
	}

	var lastLogin interface{}
	if u.LastLogin != nil {
		lastLogin = utc(*u.LastLogin)
	}
	return []interface{}{u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive, u.AuthProvider, lastLogin,
		phone, u.ProfilePicture, location, prefs, farm}, nil
}

// CreateUser inserts u, assigning its id and timestamps. A duplicate username
// or email yields models.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	now := s.timestamp()
	u.CreatedAt, u.UpdatedAt = now, now

	args, err := s.userArgs(u)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	args = append([]interface{}{u.ID}, args...)
	args = append(args, u.CreatedAt, u.UpdatedAt)

	_, err = s.exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("create user: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser writes every mutable field of u.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = s.timestamp()
	args, err := s.userArgs(u)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	args = append(args, u.UpdatedAt, u.ID)

	res, err := s.exec(ctx, `UPDATE users SET username = ?, email = ?, password_hash = ?, role = ?, is_active = ?,
		auth_provider = ?, last_login = ?, phone_number = ?, profile_picture = ?, location = ?, preferences = ?,
		farm_details = ?, updated_at = ? WHERE id = ?`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("update user: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, "update user")
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.exec(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, utc(at), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return requireAffected(res, "touch last login")
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	u, err := s.scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return u, notFound(err, "get user")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := s.scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return u, notFound(err, "get user by email")
	}
	return u, nil
}

// UserExists reports whether the email or the username is already taken.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`,
		strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username))
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return n > 0, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
}

// RecentUsers returns the newest limit users.
func (s *Store) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	return s.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (s *Store) listUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers counts users created after since. A zero since counts all.
func (s *Store) CountUsers(ctx context.Context, since time.Time) (int, error) {
	if since.IsZero() {
		return s.count(ctx, `SELECT COUNT(*) FROM users`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE created_at > ?`, utc(since))
}

// UserRefs loads the short projection of the given users, keyed by id.
// Unknown ids are absent from the result.
func (s *Store) UserRefs(ctx context.Context, ids []string) (map[string]*models.UserRef, error) {
	refs := make(map[string]*models.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	seen := make(map[string]struct{}, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	rows, err := s.query(ctx, `SELECT id, username, email FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("load user refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username, &ref.Email); err != nil {
			return nil, fmt.Errorf("load user refs: %w", err)
		}
		refs[ref.ID] = &ref
	}
	return refs, rows.Err()
}

// DeleteUser removes the user row only. See DeleteUserCascade.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "delete user")
}
