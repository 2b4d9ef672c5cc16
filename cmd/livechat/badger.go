package main

import (
	"context"
	"encoding/json"
	"fmt"
	"livechat/internal"
	"livechat/repositories"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

func openBadger(ctx context.Context, config internal.Config, logger *slog.Logger, readOnly bool) (*badger.DB, error) {
	options := badger.DefaultOptions(config.BadgerFilepath).WithReadOnly(readOnly)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	return db, nil
}

// MessageMapper renders stored messages in the Badger inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var message repositories.DiskMessage
	if err := json.Unmarshal(val, &message); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = "MESSAGE"
	row.Detail = fmt.Sprintf("%s -> %s: %s", senderLabel(message.From), message.To, message.Msg)
	return row
}

func senderLabel(from string) string {
	if from == "" {
		return "(anonymous)"
	}
	return from
}
