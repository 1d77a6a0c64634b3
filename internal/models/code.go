package models

// CodeStatus — статус кода доступа в таблице.
type CodeStatus string

const (
	CodeStatusUnused    CodeStatus = "не использован"
	CodeStatusActivated CodeStatus = "активирован"
)

// ActivationCode — одна строка листа Коды_Доступа.
// Код одноразовый: первый, кто его активировал, привязывает его навсегда.
type ActivationCode struct {
	Code       string     `json:"code"`
	Role       Role       `json:"role"`
	PersonName string     `json:"person_name"`
	IdentityID int64      `json:"identity_id"` // 0 — код ещё не привязан
	Status     CodeStatus `json:"status"`
	Place      string     `json:"place"`
}

// RoleAssignment — результат успешной авторизации, кэшируется по identity.
// Не является источником истины: всегда выводится заново из леджера кодов.
type RoleAssignment struct {
	IdentityID int64  `json:"identity_id"`
	Role       Role   `json:"role"`
	Place      string `json:"place"`
	PersonName string `json:"person_name"`
}
