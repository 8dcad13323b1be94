package models

import (
	"strings"
	"time"
)

// MatchStatus is the lifecycle state of a pair's record
type MatchStatus string

// MatchStatus constants
const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusRejected MatchStatus = "rejected"
)

// LikeKind tags a like entry; a superlike carries ranking priority only
type LikeKind string

const (
	LikeKindLike      LikeKind = "like"
	LikeKindSuperlike LikeKind = "superlike"
)

// PairKey is the unordered pair {Low, High} that keys a MatchRecord
type PairKey struct {
	Low  string `json:"low" bson:"low"`
	High string `json:"high" bson:"high"`
}

// NewPairKey orders the two ids so NewPairKey(a, b) == NewPairKey(b, a)
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

func (k PairKey) String() string {
	return k.Low + "|" + k.High
}

// ParsePairKey is the inverse of PairKey.String
func ParsePairKey(s string) (PairKey, bool) {
	low, high, ok := strings.Cut(s, "|")
	if !ok || low == "" || high == "" {
		return PairKey{}, false
	}
	return NewPairKey(low, high), true
}

func (k PairKey) Contains(userID string) bool {
	return k.Low == userID || k.High == userID
}

// Other returns the pair member that is not userID
func (k PairKey) Other(userID string) string {
	if k.Low == userID {
		return k.High
	}
	return k.Low
}

// LikeEntry records one actor's like inside a MatchRecord
type LikeEntry struct {
	UserID    string    `json:"user_id"`
	Kind      LikeKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchRecord is the single per-pair record owning the likes between two users
type MatchRecord struct {
	ID              string      `json:"id"`
	Key             PairKey     `json:"pair"`
	Status          MatchStatus `json:"status"`
	Likes           []LikeEntry `json:"likes"`
	RejectedBy      string      `json:"rejected_by,omitempty"`
	Version         int         `json:"version"`
	LastInteraction time.Time   `json:"last_interaction"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// LikeFrom returns the actor's like entry, if any
func (r *MatchRecord) LikeFrom(userID string) (LikeEntry, bool) {
	for _, l := range r.Likes {
		if l.UserID == userID {
			return l, true
		}
	}
	return LikeEntry{}, false
}

func (r *MatchRecord) HasLiked(userID string) bool {
	_, ok := r.LikeFrom(userID)
	return ok
}

// IsMutual reports whether both pair members have a like entry
func (r *MatchRecord) IsMutual() bool {
	return r.HasLiked(r.Key.Low) && r.HasLiked(r.Key.High)
}

// Clone returns a deep copy so stores never share the likes slice with callers
func (r *MatchRecord) Clone() *MatchRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Likes = append([]LikeEntry(nil), r.Likes...)
	return &c
}

// MatchStats counts a user's records by status
type MatchStats struct {
	Pending  int `json:"pending"`
	Matched  int `json:"matched"`
	Rejected int `json:"rejected"`
}

// LikeResult is what like/superlike return to the caller
type LikeResult struct {
	Record     *MatchRecord `json:"record"`
	IsNewMatch bool         `json:"is_new_match"`
}

// IncomingLike is a pending like the user has not answered yet
type IncomingLike struct {
	FromUserID string    `json:"from_user_id"`
	Kind       LikeKind  `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	RecordID   string    `json:"record_id"`
}
