package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vaultbot/internal/catalog"
)

type rawCall struct {
	method string
	params map[string]string
}

type fakeAPI struct {
	sent    []interface{}
	to      []string
	raw     []rawCall
	sendErr error
	nextID  int
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.to = append(f.to, to.Recipient())
	f.sent = append(f.sent, what)
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeAPI) Raw(method string, payload interface{}) ([]byte, error) {
	f.raw = append(f.raw, rawCall{method: method, params: payload.(map[string]string)})
	return []byte(`{"ok":true}`), nil
}

func (f *fakeAPI) ChatByUsername(name string) (*tele.Chat, error) {
	return &tele.Chat{Title: "Vault " + name}, nil
}

type countingDoer struct{ actions []string }

func (d *countingDoer) Do(_ context.Context, action, _ string, run func() error) error {
	d.actions = append(d.actions, action)
	return run()
}

func TestParseChatRef(t *testing.T) {
	for in, want := range map[string]ChatRef{
		"-1001234567890": "-1001234567890",
		" @my_vault ":    "@my_vault",
		"my_vault":       "@my_vault",
	} {
		got, err := ParseChatRef(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "@ab", "@9vault", "my vault"} {
		_, err := ParseChatRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestSendableKinds(t *testing.T) {
	assert.IsType(t, &tele.Photo{}, Sendable(catalog.MediaPhoto, "p", "", "c"))
	assert.IsType(t, &tele.Video{}, Sendable(catalog.MediaVideo, "v", "clip.mp4", ""))
	assert.IsType(t, &tele.Audio{}, Sendable(catalog.MediaAudio, "a", "", ""))
	doc, ok := Sendable(catalog.MediaDocument, "d", "app.apk", "cap").(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "d", doc.FileID)
	assert.Equal(t, "app.apk", doc.FileName)
	assert.Equal(t, "cap", doc.Caption)

	assert.Equal(t, catalog.MediaPhoto, KindFor(catalog.CategoryImage))
	assert.Equal(t, catalog.MediaDocument, KindFor(catalog.CategoryApp))
	assert.Equal(t, catalog.MediaDocument, KindFor(catalog.CategoryFile))
}

func TestPublisherRequiresBind(t *testing.T) {
	p := NewPublisher("@vault_store", nil)
	_, err := p.Publish(context.Background(), catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "x"})
	assert.ErrorIs(t, err, ErrNotBound)
	assert.ErrorIs(t, p.Delete(context.Background(), 1), ErrNotBound)
}

func TestPublisherPublishAndDelete(t *testing.T) {
	api := &fakeAPI{nextID: 40}
	doer := &countingDoer{}
	p := NewPublisher("@vault_store", doer)
	p.Bind(api)

	id, err := p.Publish(context.Background(), catalog.Attachment{Kind: catalog.MediaVideo, FileID: "vid", Caption: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 41, id)
	assert.Equal(t, []string{"@vault_store"}, api.to)
	video, ok := api.sent[0].(*tele.Video)
	require.True(t, ok)
	assert.Equal(t, "hello", video.Caption)

	require.NoError(t, p.Delete(context.Background(), 41))
	require.NoError(t, p.CopyTo(context.Background(), 555, 41))
	require.Len(t, api.raw, 2)
	assert.Equal(t, "deleteMessage", api.raw[0].method)
	assert.Equal(t, map[string]string{"chat_id": "@vault_store", "message_id": "41"}, api.raw[0].params)
	assert.Equal(t, "copyMessage", api.raw[1].method)
	assert.Equal(t, "555", api.raw[1].params["chat_id"])
	assert.Equal(t, "@vault_store", api.raw[1].params["from_chat_id"])

	title, err := p.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Vault @vault_store", title)

	assert.Equal(t, []string{"channel.publish", "channel.delete", "channel.copy", "channel.describe"}, doer.actions)
}

func TestPublisherPublishError(t *testing.T) {
	boom := errors.New("chat not found")
	p := NewPublisher("-100123", nil)
	p.Bind(&fakeAPI{sendErr: boom})
	_, err := p.Publish(context.Background(), catalog.Attachment{Kind: catalog.MediaDocument, FileID: "d"})
	assert.ErrorIs(t, err, boom)
}
