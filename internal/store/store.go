package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ownedFamily binds the caller's user id to its placeholder, so a row in
// someone else's family never matches.
const ownedFamily = `family_id IN (SELECT id FROM families WHERE user_id = ?)`

func newID() string {
	return uuid.NewString()
}

// generateToken returns 32 random bytes, hex-encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// setClause accumulates "col = ?" assignments for partial updates.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) String() string {
	return strings.Join(s.cols, ", ")
}
