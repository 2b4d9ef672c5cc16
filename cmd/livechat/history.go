package main

import (
	"context"
	"fmt"
	"io"
	"livechat/domain"
	"livechat/internal"
	"livechat/repositories"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	flagTo     string
	flagLimit  int
	flagCursor string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print stored messages, newest first",
	Long: "Print stored messages, newest first.\n" +
		"The store is opened read-only: stop the server first, it holds the lock.\n" +
		"While the server runs, the same history is served on GET /chats.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return history(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	flags := historyCmd.Flags()
	flags.StringVar(&flagTo, "to", "", "only messages addressed to this recipient")
	flags.IntVar(&flagLimit, "limit", 50, "maximum number of messages (0 for no limit)")
	flags.StringVar(&flagCursor, "cursor", "", "resume after the cursor printed by a previous call")
}

func history(ctx context.Context, out io.Writer) error {
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	location, err := config.Location()
	if err != nil {
		return err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openBadger(ctx, config, logger, true)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	messages, cursor, err := readHistory(repository, historyQuery())
	if err != nil {
		return err
	}
	renderHistory(out, messages, location)
	if cursor != nil && len(messages) > 0 {
		_, _ = fmt.Fprintf(out, "\nnext cursor: %s\n", *cursor)
	}
	return nil
}

// readHistory reads stored records and maps them to messages, newest first.
func readHistory(repository repositories.IMessageRepository, query domain.HistoryQuery) ([]domain.Message, *string, error) {
	stored, cursor, err := repository.GetMessages(repositories.NewMessageQuery(query))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read history: %w", err)
	}
	return lo.Map(stored, func(item repositories.DiskMessage, _ int) domain.Message {
		return item.ToMessage()
	}), cursor, nil
}

func historyQuery() domain.HistoryQuery {
	var query domain.HistoryQuery
	if flagTo != "" {
		query.To = &flagTo
	}
	if flagLimit > 0 {
		query.Limit = &flagLimit
	}
	if flagCursor != "" {
		query.Cursor = &flagCursor
	}
	return query
}

func renderHistory(out io.Writer, messages []domain.Message, location *time.Location) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Date", "Time", "From", "To", "Message"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range messages {
		table.Append([]string{
			message.CreatedAt.In(location).Format("2006-01-02"),
			message.DisplayTime(location),
			senderLabel(string(message.Sender)),
			message.Recipient,
			message.Body,
		})
	}
	table.Render()
}
