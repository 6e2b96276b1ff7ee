package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig - конфигурация логгера
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу, пусто = stdout
	Development bool   // режим разработки
}

// Logger - обертка над zap.Logger со структурированными полями
// предметной области (action, strategy_id, user_id, ...).
//
// Использование:
//
//	logger := utils.InitLogger(utils.LogConfig{Level: "info", Format: "json"})
//	logger.Info("strategy paused", utils.StrategyID("s1"), utils.UserID("u1"))
type Logger struct {
	*zap.Logger
}

// parseLevel преобразует строку в zapcore.Level.
// Неизвестные значения дают InfoLevel.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger создает и настраивает логгер.
// Никогда не возвращает nil: при ошибке открытия файла
// вывода происходит fallback на stderr.
func InitLogger(config LogConfig) *Logger {
	level := parseLevel(config.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.TimeKey = "ts"
	encoderConfig.MessageKey = "message"

	var encoder zapcore.Encoder
	if strings.ToLower(config.Format) == "text" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	// Выбор назначения вывода
	var sink zapcore.WriteSyncer
	switch config.Output {
	case "", "stdout":
		sink = zapcore.AddSync(os.Stdout)
	case "stderr":
		sink = zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			// Fallback на stderr, не паникуем
			sink = zapcore.AddSync(os.Stderr)
		} else {
			sink = zapcore.AddSync(file)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCaller()}
	if config.Development {
		opts = append(opts, zap.Development())
	}

	return &Logger{Logger: zap.New(core, opts...)}
}

// ============ Глобальный логгер ============

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// InitGlobalLogger инициализирует глобальный логгер
func InitGlobalLogger(config LogConfig) *Logger {
	logger := InitLogger(config)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger возвращает глобальный логгер,
// создавая логгер по умолчанию при первом обращении
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{Level: "info", Format: "json"})
	}
	return globalLogger
}

// L - короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// ============ Методы Logger ============

// With возвращает новый логгер с дополнительными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithComponent возвращает логгер с полем component
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(zap.String("component", component))
}

// ============ Глобальные функции логирования ============

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// ============ Конструкторы полей предметной области ============

// StrategyID - идентификатор стратегии
func StrategyID(id string) zap.Field { return zap.String("strategy_id", id) }

// ActionID - идентификатор аварийного действия
func ActionID(id string) zap.Field { return zap.String("action_id", id) }

// Action - тег действия
func Action(action string) zap.Field { return zap.String("action", action) }

// Role - роль пользователя
func Role(role string) zap.Field { return zap.String("role", role) }

// UserID - идентификатор пользователя
func UserID(id string) zap.Field { return zap.String("user_id", id) }

// ============ Переэкспорт стандартных конструкторов zap ============

func String(key, value string) zap.Field          { return zap.String(key, value) }
func Int(key string, value int) zap.Field         { return zap.Int(key, value) }
func Err(err error) zap.Field                     { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }
