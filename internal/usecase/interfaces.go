package usecase

// MessageNotifier pushes realtime events to connected clients. Delivery
// is best-effort; a disconnected recipient simply misses the push and
// catches up via the unread counts.
type MessageNotifier interface {
	SendToUser(userID string, payload []byte)
	SendToAdmins(payload []byte)
}
