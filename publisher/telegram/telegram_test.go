package telegram

import (
	"fmt"
	"io"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/publisher"
)

func TestFormat(t *testing.T) {
	assert.Equal(t,
		"Bohemians porazili Slavii\nhttps://www.bohemians.cz/clanky/derby",
		Format("Bohemians porazili Slavii", "https://www.bohemians.cz/clanky/derby"),
	)
}

func TestSentMessage(t *testing.T) {
	tests := []struct {
		name     string
		updates  tg.UpdatesClass
		wantID   int
		wantDate int
	}{
		{
			name:     "short sent message",
			updates:  &tg.UpdateShortSentMessage{ID: 7, Date: 1700000000},
			wantID:   7,
			wantDate: 1700000000,
		},
		{
			name: "channel message",
			updates: &tg.Updates{Updates: []tg.UpdateClass{
				&tg.UpdateMessageID{ID: 42, RandomID: 1},
				&tg.UpdateNewChannelMessage{Message: &tg.Message{ID: 42, Date: 1700000100}},
			}},
			wantID:   42,
			wantDate: 1700000100,
		},
		{
			name:    "nothing recognisable",
			updates: &tg.Updates{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, date := sentMessage(tt.updates)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestName(t *testing.T) {
	c, err := New(config.TelegramCredentials{AppID: 1, AppHash: "hash", BotToken: "token", Channel: "@bohemka"}, false, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "telegram:@bohemka", c.Name())
}

func TestClassify(t *testing.T) {
	forbidden := fmt.Errorf("failed to send message to @bohemka: %w", tgerr.New(403, "CHAT_WRITE_FORBIDDEN"))
	got := classify(forbidden)
	assert.ErrorIs(t, got, publisher.ErrRejected)
	assert.ErrorIs(t, got, forbidden)

	dropped := fmt.Errorf("failed to send message to @bohemka: %w", io.ErrUnexpectedEOF)
	got = classify(dropped)
	assert.Equal(t, dropped, got)
	assert.NotErrorIs(t, got, publisher.ErrRejected)
}
