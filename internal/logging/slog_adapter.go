// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// slogBridge implements slog.Handler on top of zerolog, so libraries
// that require an *slog.Logger (sutureslog in particular) emit through
// the same pipeline as the rest of the process. Groups flatten to
// dot-separated key prefixes.
type slogBridge struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	prefix string
}

// NewSlogLogger creates an *slog.Logger backed by the global zerolog
// logger, for handing to the supervisor's sutureslog hook.
func NewSlogLogger() *slog.Logger {
	return slog.New(&slogBridge{logger: Logger()})
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return b.logger.GetLevel() <= bridgeLevel(level)
}

func (b *slogBridge) Handle(_ context.Context, record slog.Record) error {
	event := b.logger.WithLevel(bridgeLevel(record.Level))

	for _, attr := range b.attrs {
		event = b.field(event, b.prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		event = b.field(event, b.prefix, attr)
		return true
	})

	event.Msg(record.Message)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, b.attrs...), attrs...)
	return &slogBridge{logger: b.logger, attrs: merged, prefix: b.prefix}
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	prefix := name + "."
	if b.prefix != "" {
		prefix = b.prefix + prefix
	}
	return &slogBridge{logger: b.logger, attrs: b.attrs, prefix: prefix}
}

func (b *slogBridge) field(event *zerolog.Event, prefix string, attr slog.Attr) *zerolog.Event {
	val := attr.Value.Resolve()
	key := prefix + attr.Key

	switch val.Kind() {
	case slog.KindGroup:
		groupPrefix := key + "."
		if attr.Key == "" {
			groupPrefix = prefix
		}
		groupPrefix = strings.TrimPrefix(groupPrefix, ".")
		for _, member := range val.Group() {
			event = b.field(event, groupPrefix, member)
		}
		return event
	case slog.KindString:
		return event.Str(key, val.String())
	case slog.KindBool:
		return event.Bool(key, val.Bool())
	case slog.KindInt64:
		return event.Int64(key, val.Int64())
	case slog.KindUint64:
		return event.Uint64(key, val.Uint64())
	case slog.KindFloat64:
		return event.Float64(key, val.Float64())
	case slog.KindDuration:
		return event.Dur(key, val.Duration())
	case slog.KindTime:
		return event.Time(key, val.Time())
	default:
		return event.Interface(key, val.Any())
	}
}

func bridgeLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
