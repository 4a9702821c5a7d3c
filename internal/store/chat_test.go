package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChatMessage_CreatesSession(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		ts, err := s.AppendChatMessage(ctx, &ChatMessage{
			SessionID: "telegram:12345",
			Channel:   ChannelTelegram,
			Role:      RoleUser,
			Content:   "hello",
		})
		require.NoError(t, err)
		assert.False(t, ts.IsZero())

		sessions, err := s.ListChatSessions(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "telegram:12345", sessions[0].SessionKey)
		assert.Equal(t, 1, sessions[0].MessageCount)
		assert.Equal(t, "hello", sessions[0].LastMessage)
	})
}

func TestAppendChatMessage_UpdatesRollup(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, content := range []string{"hi", "how can I help?", "status report please"} {
			_, err := s.AppendChatMessage(ctx, &ChatMessage{
				SessionID: "webchat:abc",
				Channel:   ChannelWebchat,
				Role:      RoleUser,
				Content:   content,
			})
			require.NoError(t, err)
		}

		sessions, err := s.ListChatSessions(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1, "appends to one key share a session row")
		assert.Equal(t, 3, sessions[0].MessageCount)
		assert.Equal(t, "status report please", sessions[0].LastMessage)
		require.NotNil(t, sessions[0].LastMessageTime)
	})
}

func TestAppendChatMessage_BadVariant(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.AppendChatMessage(context.Background(), &ChatMessage{
			SessionID: "webchat:abc",
			Channel:   "carrier-pigeon",
			Role:      RoleUser,
			Content:   "hello",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "channel", verr.Field)
	})
}

func TestListChatMessages_LatestNChronological(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			_, err := s.AppendChatMessage(ctx, &ChatMessage{
				SessionID: "discord:room",
				Channel:   ChannelDiscord,
				Role:      RoleUser,
				Content:   fmt.Sprintf("msg %d", i),
			})
			require.NoError(t, err)
		}

		// A limit keeps the newest N but returns them oldest-first.
		msgs, err := s.ListChatMessages(ctx, "discord:room", 4)
		require.NoError(t, err)
		require.Len(t, msgs, 4)
		assert.Equal(t, "msg 6", msgs[0].Content)
		assert.Equal(t, "msg 9", msgs[3].Content)

		// Unknown session yields an empty list, not an error.
		msgs, err = s.ListChatMessages(ctx, "discord:empty", 0)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestAppendChatMessage_ConcurrentAppends(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const writers = 10
		const perWriter = 5

		var wg sync.WaitGroup
		errs := make(chan error, writers*perWriter)
		for w := 0; w < writers; w++ {
			w := w
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_, err := s.AppendChatMessage(ctx, &ChatMessage{
						SessionID: "telegram:shared",
						Channel:   ChannelTelegram,
						Role:      RoleUser,
						Content:   fmt.Sprintf("writer %d msg %d", w, i),
					})
					if err != nil {
						errs <- err
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		// No lost increments and no duplicate session rows.
		sessions, err := s.ListChatSessions(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, writers*perWriter, sessions[0].MessageCount)

		msgs, err := s.ListChatMessages(ctx, "telegram:shared", writers*perWriter)
		require.NoError(t, err)
		assert.Len(t, msgs, writers*perWriter)
	})
}
