// internal/database/lobby.go
package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arbiter-gg/arbiter/internal/errs"
	"github.com/arbiter-gg/arbiter/internal/models"
)

// InsertLobby creates a new lobby row plus its roster in one transaction.
// New lobbies always start with reminder_status = 'pending'.
func InsertLobby(ctx context.Context, lobby *models.Lobby) error {
	q := `
	INSERT INTO lobbies (
		id, kind, name, schedule, reminder_status,
		announce_message_id, staff_channel_id, player_channel_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			lobby.ID,
			lobby.Kind,
			lobby.Name,
			lobby.Schedule.UTC(),
			models.ReminderPending,
			lobby.AnnounceMessageID,
			lobby.StaffChannelID,
			lobby.PlayerChannelID,
		)
		if err != nil {
			return err
		}
		for i, p := range lobby.Participants {
			_, err := tx.Exec(ctx, `
				INSERT INTO lobby_participants (lobby_id, competitor_id, handle, mention_id, seat)
				VALUES ($1, $2, $3, $4, $5)`,
				lobby.ID, p.CompetitorID, p.Handle, p.MentionID, i,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

const lobbyColumns = `
	id, kind, name, schedule, reminder_status,
	referee_id, session_id,
	announce_message_id, staff_channel_id, player_channel_id
`

func scanLobby(row pgx.Row) (*models.Lobby, error) {
	var l models.Lobby
	err := row.Scan(
		&l.ID,
		&l.Kind,
		&l.Name,
		&l.Schedule,
		&l.ReminderStatus,
		&l.RefereeID,
		&l.SessionID,
		&l.AnnounceMessageID,
		&l.StaffChannelID,
		&l.PlayerChannelID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	l.Schedule = l.Schedule.UTC()
	return &l, nil
}

// GetLobby fetches a lobby and its roster by ID.
func GetLobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1`
	l, err := scanLobby(DB.QueryRow(ctx, q, lobbyID))
	if err != nil {
		return nil, err
	}
	rosters, err := loadParticipants(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return nil, err
	}
	l.Participants = rosters[l.ID]
	return l, nil
}

// GetLobbyByMessage resolves the lobby an interaction references through its
// announce message.
func GetLobbyByMessage(ctx context.Context, messageID string) (*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE announce_message_id = $1`
	l, err := scanLobby(DB.QueryRow(ctx, q, messageID))
	if err != nil {
		return nil, err
	}
	rosters, err := loadParticipants(ctx, []uuid.UUID{l.ID})
	if err != nil {
		return nil, err
	}
	l.Participants = rosters[l.ID]
	return l, nil
}

// FindDueReminders returns lobbies of the given kind whose schedule lies in
// (from, to) and whose reminder status is still pending, rosters included.
// The pending filter is the sole dedup between concurrent scans; the actual
// race is decided per lobby by MarkReminderScheduled.
func FindDueReminders(ctx context.Context, kind models.LobbyKind, from, to time.Time) ([]models.Lobby, error) {
	q := `
	SELECT ` + lobbyColumns + `
	FROM lobbies
	WHERE kind = $1
	  AND schedule > $2 AND schedule < $3
	  AND reminder_status = $4
	ORDER BY schedule
	`
	rows, err := DB.Query(ctx, q, kind, from.UTC(), to.UTC(), models.ReminderPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []models.Lobby
	var ids []uuid.UUID
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		lobbies = append(lobbies, *l)
		ids = append(ids, l.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(lobbies) == 0 {
		return nil, nil
	}

	rosters, err := loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range lobbies {
		lobbies[i].Participants = rosters[lobbies[i].ID]
	}
	return lobbies, nil
}

// loadParticipants batch-reads rosters for the given lobby ids, preserving
// seat order.
func loadParticipants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Participant, error) {
	q := `
	SELECT lobby_id, competitor_id, handle, mention_id
	FROM lobby_participants
	WHERE lobby_id = ANY($1)
	ORDER BY lobby_id, seat
	`
	rows, err := DB.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Participant, len(ids))
	for rows.Next() {
		var lobbyID uuid.UUID
		var p models.Participant
		if err := rows.Scan(&lobbyID, &p.CompetitorID, &p.Handle, &p.MentionID); err != nil {
			return nil, err
		}
		out[lobbyID] = append(out[lobbyID], p)
	}
	return out, rows.Err()
}

// MarkReminderScheduled flips a lobby from pending to scheduled. Returns
// false when the conditional update affected no rows, i.e. another scan
// already won the race (or the lobby was rescheduled away).
func MarkReminderScheduled(ctx context.Context, lobbyID uuid.UUID) (bool, error) {
	tag, err := DB.Exec(ctx, `
		UPDATE lobbies SET reminder_status = $1
		WHERE id = $2 AND reminder_status = $3`,
		models.ReminderScheduled, lobbyID, models.ReminderPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FinishReminder records the terminal outcome of a send job. The update is
// conditioned on the scheduled status so a stale or duplicate job can never
// regress a lobby that was rescheduled in the meantime.
func FinishReminder(ctx context.Context, lobbyID uuid.UUID, status models.ReminderStatus) (bool, error) {
	if !status.Terminal() {
		return false, errors.New("finish reminder: status must be sent or failed")
	}
	tag, err := DB.Exec(ctx, `
		UPDATE lobbies SET reminder_status = $1
		WHERE id = $2 AND reminder_status = $3`,
		status, lobbyID, models.ReminderScheduled,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimReferee assigns userID as the lobby's referee only if the slot is
// free. Zero affected rows means the claim lost the race.
func ClaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	tag, err := DB.Exec(ctx, `
		UPDATE lobbies SET referee_id = $1
		WHERE id = $2 AND referee_id IS NULL`,
		userID, lobbyID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UnclaimReferee releases the referee slot, but only for its current holder.
func UnclaimReferee(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	tag, err := DB.Exec(ctx, `
		UPDATE lobbies SET referee_id = NULL
		WHERE id = $1 AND referee_id = $2`,
		lobbyID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetSession attaches the real-time multiplayer session to the lobby once the
// match actually starts.
func SetSession(ctx context.Context, lobbyID uuid.UUID, sessionID string) error {
	tag, err := DB.Exec(ctx, `UPDATE lobbies SET session_id = $1 WHERE id = $2`, sessionID, lobbyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Reschedule moves the lobby to a new schedule and resets the reminder status
// to pending, making it re-eligible for scanning. This is the only path out
// of a terminal status.
func Reschedule(ctx context.Context, lobbyID uuid.UUID, schedule time.Time) error {
	tag, err := DB.Exec(ctx, `
		UPDATE lobbies SET schedule = $1, reminder_status = $2
		WHERE id = $3`,
		schedule.UTC(), models.ReminderPending, lobbyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetStaffMember fetches a staff row by user id.
func GetStaffMember(ctx context.Context, userID uuid.UUID) (*models.StaffMember, error) {
	var m models.StaffMember
	err := DB.QueryRow(ctx, `
		SELECT user_id, handle, role, token_hash
		FROM staff WHERE user_id = $1`, userID,
	).Scan(&m.UserID, &m.Handle, &m.Role, &m.TokenHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
