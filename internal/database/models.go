package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SwipeAction is the decision one user records about another.
type SwipeAction string

const (
	ActionLike      SwipeAction = "like"
	ActionSuperLike SwipeAction = "super_like"
	ActionPass      SwipeAction = "pass"
)

// Valid reports whether the action is one of the recognized values.
func (a SwipeAction) Valid() bool {
	switch a {
	case ActionLike, ActionSuperLike, ActionPass:
		return true
	}
	return false
}

// Positive reports whether the action can participate in a mutual match.
// A pass never matches.
func (a SwipeAction) Positive() bool {
	return a == ActionLike || a == ActionSuperLike
}

// SwipeRecord is one directed edge in the swipe ledger. At most one
// record exists per ordered (actor, target) pair; IsMatch flips to true
// at most once, only when the reverse edge carries a positive action.
type SwipeRecord struct {
	ID        string      `json:"id" db:"id"`
	ActorID   string      `json:"actor_id" db:"actor_id"`
	TargetID  string      `json:"target_id" db:"target_id"`
	Action    SwipeAction `json:"action" db:"action"`
	SwipedAt  time.Time   `json:"swiped_at" db:"swiped_at"`
	IsMatch   bool        `json:"is_match" db:"is_match"`
	MatchedAt *time.Time  `json:"matched_at" db:"matched_at"`
}

// ProfileSnapshot is the read-only view of a user the engine scores
// against. It is owned by the profile store; the matching engine never
// mutates it. Fields left empty by an incomplete profile simply
// contribute zero to the sub-scores that need them.
type ProfileSnapshot struct {
	UserID         string     `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Age            int        `json:"age" db:"age"`
	City           string     `json:"city" db:"city"`
	Interests      StringList `json:"interests" db:"interests"`
	Hobbies        StringList `json:"hobbies" db:"hobbies"`
	ZodiacSign     string     `json:"zodiac_sign" db:"zodiac_sign"`
	Nakshatra      string     `json:"nakshatra" db:"nakshatra"`
	ChineseZodiac  string     `json:"chinese_zodiac" db:"chinese_zodiac"`
	IsComplete     bool       `json:"is_complete" db:"is_complete"`
	TelegramChatID *int64     `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// SwipeStats aggregates a user's ledger activity.
type SwipeStats struct {
	TotalMatches  int     `json:"total_matches"`
	TotalLikes    int     `json:"total_likes"`
	TotalPasses   int     `json:"total_passes"`
	LikesReceived int     `json:"likes_received"`
	SuperLikes    int     `json:"super_likes"`
	MatchRate     float64 `json:"match_rate"`
}

// Block is a moderation edge; a block in either direction excludes the
// pair from candidate generation and deletes any ledger records.
type Block struct {
	BlockerID string    `json:"blocker_id" db:"blocker_id"`
	BlockedID string    `json:"blocked_id" db:"blocked_id"`
	BlockedAt time.Time `json:"blocked_at" db:"blocked_at"`
}

// StringList stores a list of strings as a JSON column
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contains reports whether the list holds the given value.
func (s StringList) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}
	return false
}
