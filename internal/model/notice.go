package model

import "github.com/google/uuid"

// NoticeKind lifecycle milestone reported to notifiers after a committed pass
type NoticeKind string

const (
	NoticeStatusChanged NoticeKind = "status_changed"
	NoticeMatchReplayed NoticeKind = "match_replayed"
	NoticeEventWinner   NoticeKind = "event_winner"
)

type SyncNotice struct {
	Kind      NoticeKind
	EventID   uuid.UUID
	EventCode string
	Message   string
}
