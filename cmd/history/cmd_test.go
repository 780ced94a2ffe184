package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/cyberhook/cmd/history"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

func TestRecent(t *testing.T) {
	messages := []webhook.HistoryMessage{{ID: "3"}, {ID: "2"}, {ID: "1"}}

	assert.Equal(t, messages, history.Recent(messages, 0))
	assert.Equal(t, messages, history.Recent(messages, 5))
	assert.Equal(t, []webhook.HistoryMessage{{ID: "3"}, {ID: "2"}}, history.Recent(messages, 2))
	assert.NotNil(t, history.Recent(nil, 1))
	assert.Empty(t, history.Recent(nil, 1))
}
