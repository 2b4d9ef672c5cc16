package domain

// HistoryQuery selects stored messages, newest first.
// A nil field means no filter, default limit, or first page.
type HistoryQuery struct {
	To     *string
	Cursor *string
	Limit  *int
}
