package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"dashboard/internal/metrics"
	"dashboard/pkg/utils"
)

// responseWriter перехватывает статус код и размер ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack пробрасывает перехват соединения к нижележащему writer.
// Без него upgrade на /ws/stream падает: gorilla/websocket требует
// http.Hijacker от ResponseWriter.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}

// Unwrap поддерживает http.NewResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging - middleware для логирования и метрик HTTP запросов
//
// Назначение:
// Пишет структурированный лог по каждому запросу (метод, путь, статус,
// длительность, IP, размер ответа) и обновляет Prometheus метрики.
// Метрики помечаются шаблоном маршрута, а не сырым путем, чтобы не
// раздувать кардинальность - шаблон передает router через pattern.
func Logging(logger *utils.Logger, pattern func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			route := pattern(r)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(duration.Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()

			logger.Info("http request",
				utils.String("method", r.Method),
				utils.String("path", r.URL.Path),
				utils.Int("status", wrapped.statusCode),
				utils.String("duration", duration.String()),
				utils.String("ip", requestIP(r)),
				utils.Int("bytes", int(wrapped.written)),
			)
		})
	}
}
