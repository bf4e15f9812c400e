package websocket

// Типы событий, связанные с сессиями
const (
	// SESSION_REVOKED уведомляет устройство, что его сессия отозвана
	SESSION_REVOKED = "SESSION_REVOKED"

	// LOGOUT_ALL_DEVICES уведомляет все устройства о полном выходе
	LOGOUT_ALL_DEVICES = "LOGOUT_ALL_DEVICES"

	// ACCOUNT_LINKED уведомляет о привязке нового социального аккаунта
	ACCOUNT_LINKED = "ACCOUNT_LINKED"

	// ACCOUNT_UNLINKED уведомляет об отвязке социального аккаунта
	ACCOUNT_UNLINKED = "ACCOUNT_UNLINKED"

	// PASSWORD_CHANGED уведомляет об изменении пароля
	PASSWORD_CHANGED = "PASSWORD_CHANGED"
)

// Event представляет событие, отправляемое клиенту
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
