package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.Create(entity.User{Username: "alice", Name: "Alice Example"})
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	store.Delete(sess.ID)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestStoreUnknownToken(t *testing.T) {
	store := NewStore(time.Hour)
	_, err := store.Get("no-such-token")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionMessageCap(t *testing.T) {
	sess := NewStore(time.Hour).Create(entity.User{Username: "alice"})

	for i := 0; i < 6; i++ {
		sess.Append(entity.Message{Role: entity.RoleUser, Content: fmt.Sprintf("m%d", i)}, 4)
	}

	messages := sess.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "m2", messages[0].Content)
	assert.Equal(t, "m5", messages[3].Content)
}

func TestSessionClearKeepsArtifacts(t *testing.T) {
	sess := NewStore(time.Hour).Create(entity.User{Username: "alice"})

	sess.Append(entity.Message{Role: entity.RoleUser, Content: "hi"}, 0)
	sess.SetAuditResult(&entity.PipelineResult{ChunkCount: 3})
	sess.SetVATReport(&VATReport{XLSX: []byte{1}})
	sess.SetTemplateArtifacts(&TemplateArtifacts{FilledDOCX: []byte{2}})

	sess.Clear()

	assert.Empty(t, sess.Messages())
	_, ok := sess.AuditResult()
	assert.True(t, ok)
	_, ok = sess.VATReport()
	assert.True(t, ok)
	_, ok = sess.TemplateArtifacts()
	assert.True(t, ok)
}

func TestSessionMessagesReturnsCopy(t *testing.T) {
	sess := NewStore(time.Hour).Create(entity.User{Username: "alice"})
	sess.Append(entity.Message{Role: entity.RoleUser, Content: "original"}, 0)

	messages := sess.Messages()
	messages[0].Content = "mutated"

	assert.Equal(t, "original", sess.Messages()[0].Content)
}
