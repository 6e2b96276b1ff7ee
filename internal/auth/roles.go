// Package auth содержит роли, предикаты авторизации и подписанные
// сессионные токены для админ-дашборда.
package auth

import "dashboard/internal/models"

// Предикаты авторизации: чистые тотальные функции (роль) -> bool.
//
// Вся ролевая логика собрана здесь, а не размазана по handlers:
// каждый handler перед state-changing операцией вызывает
// соответствующий предикат и при отказе отвечает 403.
//
// Матрица доступа:
//   - ADMIN: все операции
//   - OPERATOR: позиции, стратегии, аварийные действия
//   - VIEWER: только просмотр

// CanEditConfig - редактирование конфигурации
func CanEditConfig(role string) bool {
	return role == models.RoleAdmin
}

// CanManagePositions - закрытие позиций (одиночное и массовое)
func CanManagePositions(role string) bool {
	return role == models.RoleAdmin || role == models.RoleOperator
}

// CanManageStrategies - запуск/пауза/остановка стратегий
func CanManageStrategies(role string) bool {
	return role == models.RoleAdmin || role == models.RoleOperator
}

// CanUseEmergencyControls - аварийные действия (pause/stop/close_all)
func CanUseEmergencyControls(role string) bool {
	return role == models.RoleAdmin || role == models.RoleOperator
}

// CanViewAuditLogs - просмотр журнала аудита
func CanViewAuditLogs(role string) bool {
	return role == models.RoleAdmin
}

// CanManageUsers - управление пользователями
func CanManageUsers(role string) bool {
	return role == models.RoleAdmin
}

// CanManageServices - перезапуск сервисов торговой системы
func CanManageServices(role string) bool {
	return role == models.RoleAdmin
}
