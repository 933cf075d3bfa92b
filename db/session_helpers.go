package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// CreateSession stores a new session and returns the raw bearer token. Only
// the hash is persisted.
func CreateSession() (string, *Session, error) {
	token := uuid.New().String()

	session := &Session{
		Id:        uuid.New().String(),
		TokenHash: hashToken(token),
	}

	err := Conn.QueryRow(
		"INSERT INTO sessions (id, token_hash) VALUES ($1, $2) RETURNING created_at",
		session.Id, session.TokenHash,
	).Scan(&session.CreatedAt)
	if err != nil {
		return "", nil, fmt.Errorf("error creating session: %v", err)
	}

	return token, session, nil
}

func ValidateSessionToken(token string) (*Session, error) {
	var session Session
	err := Conn.Get(&session,
		"SELECT * FROM sessions WHERE token_hash = $1 AND deleted_at IS NULL",
		hashToken(token))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid session token")
		}
		return nil, fmt.Errorf("error validating session token: %v", err)
	}

	return &session, nil
}

// SetSessionHosterToken attaches the access token obtained from the OAuth
// exchange to the session.
func SetSessionHosterToken(sessionId, hosterName, accessToken string) error {
	_, err := Conn.Exec(
		"UPDATE sessions SET hoster_name = $2, access_token = $3 WHERE id = $1",
		sessionId, hosterName, accessToken)

	if err != nil {
		return fmt.Errorf("error storing hoster token: %v", err)
	}
	return nil
}
