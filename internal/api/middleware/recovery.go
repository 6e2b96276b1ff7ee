package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"dashboard/pkg/utils"
)

// Recovery - middleware восстановления после паники в handlers
//
// Назначение:
// Перехватывает panic, пишет сообщение и stack trace в лог и
// возвращает клиенту 500 в общем конверте API. Текст паники в ответ
// не попадает.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						utils.Any("panic", rec),
						utils.String("method", r.Method),
						utils.String("path", r.URL.Path),
						utils.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"error":   "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
