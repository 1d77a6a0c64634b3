package models

import "strings"

// Role — закрытый набор ролей из листа Коды_Доступа.
type Role string

const (
	RoleCashier   Role = "кассир"
	RoleGrill     Role = "шаурмен"
	RoleBartender Role = "бармен"
	RoleOwner     Role = "владелец"
)

// ParseRole нормализует значение из таблицы.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsValid проверяет, что роль входит в разрешённый набор.
func (r Role) IsValid() bool {
	switch r {
	case RoleCashier, RoleGrill, RoleBartender, RoleOwner:
		return true
	}
	return false
}

// IsStaff — персонал, которому доступны смены. Владелец смен не открывает.
func (r Role) IsStaff() bool {
	switch r {
	case RoleCashier, RoleGrill, RoleBartender:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Title возвращает роль с заглавной буквы для сообщений пользователю.
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
