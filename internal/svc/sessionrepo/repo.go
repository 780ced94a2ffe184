package sessionrepo

import (
	"context"

	"github.com/yusufsyaifudin/cyberhook/webhook"
)

const DefaultStorageKey = "cyberhook_data"

// Repo persists the client session: current webhook config and sent message history.
// Cooldown and quota are never part of it.
type Repo interface {
	// Load never fails, absent or malformed data yields webhook.DefaultSession.
	Load(ctx context.Context) (out OutLoad)
	Save(ctx context.Context, in InputSave) (err error)
	ClearHistory(ctx context.Context, in InputClearHistory) (err error)
}

type OutLoad struct {
	Session webhook.Session

	// Fallback is true when the stored blob is absent or cannot be used.
	Fallback bool
}

type InputSave struct {
	Config   webhook.Config
	Messages []webhook.HistoryMessage `validate:"max=100"`
}

type InputClearHistory struct {
	Config webhook.Config
}

// AppendHistory returns new history with msg at index 0, keeping at most webhook.MaxHistory entries.
// The oldest entries are dropped first. The history slice is never modified.
func AppendHistory(history []webhook.HistoryMessage, msg webhook.HistoryMessage) []webhook.HistoryMessage {
	n := len(history) + 1
	if n > webhook.MaxHistory {
		n = webhook.MaxHistory
	}

	out := make([]webhook.HistoryMessage, 0, n)
	out = append(out, msg)
	out = append(out, history[:n-1]...)
	return out
}
