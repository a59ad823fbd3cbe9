package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"ms-reminders/internal/models"
	"ms-reminders/internal/reminder"
)

var ErrNotFound = errors.New("not found")

// ReminderRepository is the Postgres-backed reminder.Store.
type ReminderRepository struct {
	DB *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{DB: db}
}

var _ reminder.Store = (*ReminderRepository)(nil)

// DATE and TIME columns are selected as text so they stay naive local values.
const appointmentColumns = `
	id::text AS id, user_id::text AS user_id, doctor_name, clinic_name,
	date::text AS date, time::text AS time, status`

const prescriptionColumns = `
	id::text AS id, user_id::text AS user_id, medication, dosage, frequency, doctor,
	start_date::text AS start_date, end_date::text AS end_date`

const notificationColumns = `
	id::text AS id, user_id::text AS user_id, type, related_id::text AS related_id, title, message,
	scheduled_for, sent_at, read_at, dedup_key, created_at`

func (r *ReminderRepository) ListReminderAppointments(ctx context.Context, fromDate, toDate string) ([]models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status IN ('upcoming', 'confirmed')
		  AND date BETWEEN $1::date AND $2::date
		ORDER BY date, time
	`

	var appointments []models.Appointment
	if err := r.DB.SelectContext(ctx, &appointments, query, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("error querying appointments: %w", err)
	}
	return appointments, nil
}

func (r *ReminderRepository) ListActivePrescriptions(ctx context.Context, today string) ([]models.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `
		FROM prescriptions
		WHERE start_date <= $1::date
		  AND (end_date IS NULL OR end_date >= $1::date)
		ORDER BY start_date
	`

	var prescriptions []models.Prescription
	if err := r.DB.SelectContext(ctx, &prescriptions, query, today); err != nil {
		return nil, fmt.Errorf("error querying prescriptions: %w", err)
	}
	return prescriptions, nil
}

// FindRecentNotification returns the latest sent notification for (relatedID, nt)
// at or after since, or nil when there is none.
func (r *ReminderRepository) FindRecentNotification(ctx context.Context, relatedID string, nt models.NotificationType, since time.Time) (*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE related_id = $1::uuid
		  AND type = $2
		  AND sent_at IS NOT NULL
		  AND sent_at >= $3
		ORDER BY sent_at DESC
		LIMIT 1
	`

	var n models.Notification
	err := r.DB.GetContext(ctx, &n, query, relatedID, nt, since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying notifications for %s: %w", relatedID, err)
	}
	return &n, nil
}

func (r *ReminderRepository) InsertNotification(ctx context.Context, n *models.Notification) (string, error) {
	query := `
		INSERT INTO notifications
			(id, user_id, type, related_id, title, message, scheduled_for, sent_at, read_at, dedup_key)
		VALUES
			(:id, :user_id, :type, :related_id, :title, :message, :scheduled_for, :sent_at, :read_at, :dedup_key)
		ON CONFLICT (dedup_key) DO NOTHING
		RETURNING CAST(id AS text)
	`

	rows, err := r.DB.NamedQueryContext(ctx, query, n)
	if err != nil {
		return "", fmt.Errorf("error inserting notification: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("error inserting notification: %w", err)
		}
		return "", reminder.ErrDuplicateNotification
	}

	var id string
	if err := rows.Scan(&id); err != nil {
		return "", fmt.Errorf("error reading inserted notification id: %w", err)
	}
	return id, nil
}

// GetUserContact returns the email address and display name on a user's profile.
func (r *ReminderRepository) GetUserContact(ctx context.Context, userID string) (email, name string, err error) {
	query := `
		SELECT COALESCE(email, ''), COALESCE(full_name, '')
		FROM profiles
		WHERE id = $1::uuid
	`

	err = r.DB.QueryRowxContext(ctx, query, userID).Scan(&email, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("error querying profile %s: %w", userID, err)
	}
	return email, name, nil
}
