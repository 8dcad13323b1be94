package models

import "time"

// Event names delivered to clients
const (
	EventNewMatch = "newMatch"
	EventNewLike  = "newLike"
)

// MatchEvent is the notification payload published for a like or a new match.
// Recipients lists the users the event is addressed to.
type MatchEvent struct {
	Type       string    `json:"type"`
	Recipients []string  `json:"recipients"`
	ActorID    string    `json:"actor_id,omitempty"`
	Users      []string  `json:"users,omitempty"`
	Kind       LikeKind  `json:"kind,omitempty"`
	At         time.Time `json:"at"`
}

// NewMatchEvent addresses a match event to both pair members
func NewMatchEvent(userA, userB string, at time.Time) MatchEvent {
	return MatchEvent{
		Type:       EventNewMatch,
		Recipients: []string{userA, userB},
		Users:      []string{userA, userB},
		At:         at,
	}
}

// NewLikeEvent addresses a like event to its target only
func NewLikeEvent(actorID, targetID string, kind LikeKind, at time.Time) MatchEvent {
	return MatchEvent{
		Type:       EventNewLike,
		Recipients: []string{targetID},
		ActorID:    actorID,
		Kind:       kind,
		At:         at,
	}
}
