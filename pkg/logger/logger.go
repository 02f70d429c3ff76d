package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with request and domain helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout. Text output in gin debug mode, JSON otherwise.
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"), gin.Mode() != gin.DebugMode)
}

// NewWithWriter creates a logger for an arbitrary sink
func NewWithWriter(w io.Writer, levelStr string, jsonOutput bool) *Logger {
	level := ParseLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel converts a LOG_LEVEL string to slog.Level, defaulting to info
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("user_id", userID))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithComponent tags every record with the emitting subsystem
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	attrs := []any{
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	}
	if userID, ok := c.Get("user_id"); ok {
		attrs = append(attrs, slog.Any("user_id", userID))
	}

	switch {
	case c.Writer.Status() >= 500:
		l.Logger.ErrorContext(c.Request.Context(), "HTTP Request", attrs...)
	case c.Writer.Status() >= 400:
		l.Logger.WarnContext(c.Request.Context(), "HTTP Request", attrs...)
	default:
		l.Logger.InfoContext(c.Request.Context(), "HTTP Request", attrs...)
	}
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

func (l *Logger) LogTicketBooked(ctx context.Context, tripID, ticketNumber, seatNumber, userID string) {
	l.Logger.InfoContext(ctx,
		"Ticket Booked",
		slog.String("trip_id", tripID),
		slog.String("ticket_number", ticketNumber),
		slog.String("seat_number", seatNumber),
		slog.String("user_id", userID),
	)
}

func (l *Logger) LogTicketStatusChanged(ctx context.Context, tripID, ticketNumber, from, to string) {
	l.Logger.InfoContext(ctx,
		"Ticket Status Changed",
		slog.String("trip_id", tripID),
		slog.String("ticket_number", ticketNumber),
		slog.String("from", from),
		slog.String("to", to),
	)
}

func (l *Logger) LogRegistrationCreated(ctx context.Context, registrationID, tripID, userID string, guests int) {
	l.Logger.InfoContext(ctx,
		"Trip Registration Created",
		slog.String("registration_id", registrationID),
		slog.String("trip_id", tripID),
		slog.String("user_id", userID),
		slog.Int("num_guests", guests),
	)
}

func (l *Logger) LogCheckout(ctx context.Context, orderID, userID string, lines int, total float64) {
	l.Logger.InfoContext(ctx,
		"Cart Checked Out",
		slog.String("order_id", orderID),
		slog.String("user_id", userID),
		slog.Int("lines", lines),
		slog.Float64("total", total),
	)
}

func (l *Logger) LogOutboxPublished(ctx context.Context, eventID, eventType string, attempts int) {
	l.Logger.DebugContext(ctx,
		"Outbox Event Published",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.Int("attempts", attempts),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
