package store

import "context"

// GetSettings returns the single shop settings row.
func (q *Queries) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := q.db.QueryRow(ctx, `
		SELECT is_open, closed_message_en, closed_message_ar, opening_hours, opening_hours_ar
		FROM settings WHERE id = 1`,
	).Scan(&s.IsOpen, &s.ClosedMessageEn, &s.ClosedMessageAr, &s.OpeningHours, &s.OpeningHoursAr)
	return s, err
}

// SetShopOpen toggles the ordering gate.
func (q *Queries) SetShopOpen(ctx context.Context, isOpen bool) error {
	_, err := q.db.Exec(ctx, `UPDATE settings SET is_open = $1 WHERE id = 1`, isOpen)
	return err
}

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := q.db.QueryRow(ctx,
		`SELECT id, email, hashed_password FROM admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.HashedPassword)
	return a, err
}

// UpsertAdmin creates or rotates the admin credential. Called at startup
// when ADMIN_EMAIL / ADMIN_PASSWORD are configured.
func (q *Queries) UpsertAdmin(ctx context.Context, email, hashedPassword string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO admins (email, hashed_password)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET hashed_password = EXCLUDED.hashed_password`,
		email, hashedPassword)
	return err
}
