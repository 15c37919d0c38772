package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/channel"
	"github.com/m3rciful/vaultbot/internal/storage"
	"github.com/m3rciful/vaultbot/internal/storage/storagetest"
)

const (
	ownerID int64 = 1
	modID   int64 = 2
	aliceID int64 = 3
	bobID   int64 = 4
)

type outgoing struct {
	what   any
	markup *tele.ReplyMarkup
	edit   bool
}

// fakeContext records what handlers send, edit and answer.
type fakeContext struct {
	tele.Context
	store    map[string]any
	sender   *tele.User
	message  *tele.Message
	callback *tele.Callback
	query    *tele.Query

	out        []outgoing
	responses  []*tele.CallbackResponse
	respondErr error
	answer     *tele.QueryResponse
}

func newMessage(uid int64, text string) *fakeContext {
	return &fakeContext{
		store:   map[string]any{},
		sender:  &tele.User{ID: uid, FirstName: fmt.Sprintf("user%d", uid)},
		message: &tele.Message{Text: text, Chat: &tele.Chat{ID: uid}},
	}
}

func newMedia(uid int64, m *tele.Message) *fakeContext {
	c := newMessage(uid, "")
	m.Chat = &tele.Chat{ID: uid}
	c.message = m
	return c
}

func newCallback(uid int64, unique string, data ...string) *fakeContext {
	c := newMessage(uid, "")
	c.callback = &tele.Callback{ID: "cb", Unique: unique, Data: strings.Join(data, "|"), Message: c.message}
	return c
}

func (f *fakeContext) Get(k string) any           { return f.store[k] }
func (f *fakeContext) Set(k string, v any)        { f.store[k] = v }
func (f *fakeContext) Sender() *tele.User         { return f.sender }
func (f *fakeContext) Chat() *tele.Chat           { return f.message.Chat }
func (f *fakeContext) Update() tele.Update        { return tele.Update{ID: 1} }
func (f *fakeContext) Message() *tele.Message     { return f.message }
func (f *fakeContext) Callback() *tele.Callback   { return f.callback }
func (f *fakeContext) Query() *tele.Query         { return f.query }
func (f *fakeContext) Text() string               { return f.message.Text }
func (f *fakeContext) Send(w any, o ...any) error { return f.record(w, false, o) }
func (f *fakeContext) Edit(w any, o ...any) error { return f.record(w, true, o) }

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) Answer(resp *tele.QueryResponse) error {
	f.answer = resp
	return nil
}

func (f *fakeContext) record(w any, edit bool, opts []any) error {
	o := outgoing{what: w, edit: edit}
	for _, opt := range opts {
		if so, ok := opt.(*tele.SendOptions); ok {
			o.markup = so.ReplyMarkup
		}
	}
	f.out = append(f.out, o)
	return nil
}

func (f *fakeContext) last(t *testing.T) outgoing {
	t.Helper()
	require.NotEmpty(t, f.out, "nothing was sent")
	return f.out[len(f.out)-1]
}

func (f *fakeContext) lastText(t *testing.T) string {
	t.Helper()
	s, ok := f.last(t).what.(string)
	require.True(t, ok, "last message is not text")
	return s
}

func (f *fakeContext) lastResponse(t *testing.T) *tele.CallbackResponse {
	t.Helper()
	require.NotEmpty(t, f.responses, "callback was not answered")
	return f.responses[len(f.responses)-1]
}

func buttons(m *tele.ReplyMarkup) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.Unique)
		}
	}
	return out
}

type fakePublisher struct {
	mu   sync.Mutex
	next int
}

func (p *fakePublisher) Publish(context.Context, catalog.Attachment) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	return 500 + p.next, nil
}

func (p *fakePublisher) Delete(context.Context, int) error { return nil }

type fakeChannel struct {
	copied  []int
	copyErr error
	title   string
	descErr error
}

func (f *fakeChannel) Ref() channel.ChatRef { return "@vault_store" }

func (f *fakeChannel) CopyTo(_ context.Context, _ int64, msgID int) error {
	f.copied = append(f.copied, msgID)
	return f.copyErr
}

func (f *fakeChannel) Describe(context.Context) (string, error) { return f.title, f.descErr }

type fixture struct {
	bot   *Bot
	items *catalog.ItemService
	users *catalog.UserService
	ch    *fakeChannel
}

func setup(t *testing.T) fixture {
	t.Helper()
	tghelpers.SetDispatcher(nil)
	ctx := context.Background()
	st := storage.New(storagetest.Open(t))
	users := catalog.NewUserService(st.Users, ownerID, 6)
	items := catalog.NewItemService(st.Items, users, &fakePublisher{}, catalog.DefaultLimits())
	require.NoError(t, users.SeedOwner(ctx))
	require.NoError(t, users.Register(ctx, modID, "Mod"))
	_, err := users.ToggleModerator(ctx, ownerID, modID)
	require.NoError(t, err)
	require.NoError(t, users.Register(ctx, aliceID, "Alice"))
	require.NoError(t, users.Ensure(ctx, bobID, "Bob"))

	ch := &fakeChannel{title: "Vault"}
	return fixture{
		bot:   New(Deps{Items: items, Users: users, Channel: ch}),
		items: items,
		users: users,
		ch:    ch,
	}
}

func (fx fixture) press(t *testing.T, uid int64, unique string, data ...string) *fakeContext {
	t.Helper()
	c := newCallback(uid, unique, data...)
	h, ok := fx.bot.callbackHandlers()[unique]
	require.True(t, ok, "no handler for %s", unique)
	require.NoError(t, h(c))
	return c
}

func (fx fixture) say(t *testing.T, c *fakeContext) *fakeContext {
	t.Helper()
	require.NoError(t, fx.bot.flows.ManagerHandler(c))
	return c
}

func (fx fixture) upload(t *testing.T, uid int64, a catalog.Attachment) catalog.Item {
	t.Helper()
	it, err := fx.items.Upload(context.Background(), uid, nil, a)
	require.NoError(t, err)
	return it
}

func photo(id string) *tele.Message {
	return &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: id}}, Caption: "sunset"}
}

func TestEveryKeyHasHandler(t *testing.T) {
	fx := setup(t)
	handlers := fx.bot.callbackHandlers()
	for _, key := range []string{keyMain, keyRegister, keyProfile, keyCatOpen, keyCatList, keyCatUpload,
		keyItemView, keyItemGet, keyItemEdit, keyEditName, keyEditCaption, keyItemDel,
		keyTrashList, keyTrashRestore, keyTrashPurge, keyTrashPurgeAll, keyTrashPurgeAllDo,
		keySearchOpen, keySearchCat, keyAdminOpen, keyAdminUsers, keyAdminToggle, keyAdminStats,
		keyAdminSettings, keyFlowCancel} {
		assert.Contains(t, handlers, key)
	}
}

func TestStartAndRegister(t *testing.T) {
	fx := setup(t)
	const carol int64 = 9

	c := newMessage(carol, "/start")
	require.NoError(t, fx.bot.handleStart(c))
	assert.Contains(t, buttons(c.last(t).markup), keyRegister)

	registered, err := fx.users.IsRegistered(context.Background(), carol)
	require.NoError(t, err)
	assert.False(t, registered)

	c = fx.press(t, carol, keyRegister)
	assert.Equal(t, textRegistered, c.lastText(t))
	assert.True(t, c.last(t).edit)
	assert.NotContains(t, buttons(c.last(t).markup), keyAdminOpen)

	c = fx.press(t, modID, keyMain)
	assert.Contains(t, buttons(c.last(t).markup), keyAdminOpen)
}

func TestProfile(t *testing.T) {
	fx := setup(t)

	c := fx.press(t, aliceID, keyProfile)
	text := c.lastText(t)
	assert.Contains(t, text, "Alice")
	assert.Contains(t, text, "Status: registered")
	assert.Contains(t, text, "Role: "+catalog.RoleUser.String())

	c = fx.press(t, ownerID, keyProfile)
	assert.Contains(t, buttons(c.last(t).markup), keyAdminOpen)
}

func TestUploadFlowKeepsWaitingOnMismatch(t *testing.T) {
	fx := setup(t)

	fx.press(t, aliceID, keyCatUpload, string(catalog.CategoryVideo))
	assert.Equal(t, stateUpload, fx.bot.flows.GetState(aliceID))

	c := fx.say(t, newMedia(aliceID, photo("p1")))
	assert.Contains(t, c.lastText(t), "not")
	assert.Equal(t, stateUpload, fx.bot.flows.GetState(aliceID), "mismatch keeps the flow")

	c = fx.say(t, newMessage(aliceID, "hello"))
	assert.Equal(t, hintUpload, c.lastText(t))

	c = fx.say(t, newMedia(aliceID, &tele.Message{Video: &tele.Video{File: tele.File{FileID: "v1"}, FileName: "clip.mp4"}}))
	assert.Contains(t, c.lastText(t), "Uploaded")
	assert.False(t, fx.bot.flows.InProgress(aliceID))

	page, err := fx.items.ListActive(context.Background(), catalog.CategoryVideo, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "v1", page.Items[0].FileID)
}

func TestUploadStartNeedsRegistration(t *testing.T) {
	fx := setup(t)
	c := fx.press(t, bobID, keyCatUpload, string(catalog.CategoryImage))
	assert.Equal(t, textRegisterFirst, c.lastResponse(t).Text)
	assert.False(t, fx.bot.flows.InProgress(bobID))
}

func TestQuickUpload(t *testing.T) {
	fx := setup(t)

	c := newMedia(aliceID, photo("p1"))
	require.NoError(t, fx.bot.handleQuickUpload(c))
	assert.Contains(t, c.lastText(t), catalog.CategoryImage.Label())

	c = newMedia(bobID, photo("p2"))
	require.NoError(t, fx.bot.handleQuickUpload(c))
	assert.Equal(t, textRegisterFirst, c.lastText(t))

	c = newMedia(aliceID, &tele.Message{Sticker: &tele.Sticker{}})
	require.NoError(t, fx.bot.handleQuickUpload(c))
	assert.Contains(t, c.lastText(t), "cannot read")
}

func TestEditNameFlow(t *testing.T) {
	fx := setup(t)
	it := fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaDocument, FileID: "d1", FileName: "a.txt"})

	c := fx.press(t, bobID, keyEditName, idArg(it.ID))
	assert.Equal(t, textNotAllowed, c.lastResponse(t).Text)
	assert.False(t, fx.bot.flows.InProgress(bobID))

	fx.press(t, aliceID, keyEditName, idArg(it.ID))
	assert.Equal(t, stateEditName, fx.bot.flows.GetState(aliceID))

	c = fx.say(t, newMessage(aliceID, "   "))
	assert.Contains(t, c.lastText(t), "Invalid")
	assert.Equal(t, stateEditName, fx.bot.flows.GetState(aliceID))

	c = fx.say(t, newMessage(aliceID, "report.txt"))
	assert.False(t, fx.bot.flows.InProgress(aliceID))
	assert.Contains(t, c.lastText(t), "report.txt")

	got, err := fx.items.Get(context.Background(), aliceID, it.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Name)
	assert.Equal(t, "report.txt", *got.Name)
}

func TestTrashRestoreAndPurge(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	it := fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1"})

	c := fx.press(t, aliceID, keyItemDel, idArg(it.ID))
	assert.Contains(t, c.lastText(t), "trash")
	assert.Contains(t, buttons(c.last(t).markup), keyTrashRestore)

	c = fx.press(t, aliceID, keyTrashList, "1")
	assert.Contains(t, buttons(c.last(t).markup), keyItemView)
	assert.NotContains(t, buttons(c.last(t).markup), keyTrashPurgeAll)

	c = fx.press(t, bobID, keyTrashList, "1")
	assert.Equal(t, textTrashEmpty, c.lastText(t))

	c = fx.press(t, aliceID, keyTrashPurge, idArg(it.ID))
	assert.Equal(t, textNotAllowed, c.lastResponse(t).Text)

	fx.press(t, aliceID, keyTrashRestore, idArg(it.ID))
	got, err := fx.items.Get(ctx, aliceID, it.ID)
	require.NoError(t, err)
	assert.False(t, got.Trashed())

	_, err = fx.items.Trash(ctx, aliceID, it.ID)
	require.NoError(t, err)
	c = fx.press(t, modID, keyTrashList, "1")
	assert.Contains(t, buttons(c.last(t).markup), keyTrashPurgeAll)

	c = fx.press(t, modID, keyTrashPurgeAllDo)
	assert.Contains(t, c.lastText(t), "1")
	_, err = fx.items.Get(ctx, modID, it.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestFailedToastKeepsScreenUpdate(t *testing.T) {
	fx := setup(t)
	it := fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1"})

	c := newCallback(aliceID, keyItemDel, idArg(it.ID))
	c.respondErr = errors.New("query is too old")
	require.NoError(t, fx.bot.callbackHandlers()[keyItemDel](c))
	assert.Contains(t, c.lastText(t), "trash")
	assert.Contains(t, buttons(c.last(t).markup), keyTrashRestore)

	got, err := fx.items.Get(context.Background(), aliceID, it.ID)
	require.NoError(t, err)
	assert.True(t, got.Trashed())

	c = newCallback(aliceID, keyTrashRestore, idArg(it.ID))
	c.respondErr = errors.New("query is too old")
	require.NoError(t, fx.bot.callbackHandlers()[keyTrashRestore](c))
	assert.NotEmpty(t, c.out)
}

func TestItemGetCopiesChannelMessage(t *testing.T) {
	fx := setup(t)
	it := fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1"})

	fx.press(t, bobID, keyItemGet, idArg(it.ID))
	require.Len(t, fx.ch.copied, 1)
	assert.Equal(t, int(*it.ChannelMsgID), fx.ch.copied[0])

	fx.ch.copyErr = errors.New("message to copy not found")
	c := fx.press(t, bobID, keyItemGet, idArg(it.ID))
	_, isPhoto := c.last(t).what.(*tele.Photo)
	assert.True(t, isPhoto, "falls back to sending the stored file")
}

func TestSearchFlow(t *testing.T) {
	fx := setup(t)
	fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaDocument, FileID: "d1", FileName: "Budget.xlsx"})
	fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1", Caption: "budget chart"})

	fx.press(t, bobID, keySearchOpen)
	assert.Equal(t, stateSearchGlobal, fx.bot.flows.GetState(bobID))
	c := fx.say(t, newMessage(bobID, "budget"))
	assert.Contains(t, c.lastText(t), "2 result(s)")
	assert.False(t, fx.bot.flows.InProgress(bobID))

	fx.press(t, bobID, keySearchCat, string(catalog.CategoryImage))
	c = fx.say(t, newMessage(bobID, "BUDGET"))
	assert.Contains(t, c.lastText(t), "1 result(s)")

	fx.press(t, bobID, keySearchOpen)
	c = fx.say(t, newMessage(bobID, "nothing"))
	assert.Equal(t, textNoResults, c.lastText(t))
}

func TestInlineQuery(t *testing.T) {
	fx := setup(t)
	fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaDocument, FileID: "d1", FileName: "notes.md"})

	c := newMessage(bobID, "")
	c.query = &tele.Query{Text: "notes"}
	require.NoError(t, fx.bot.handleInlineQuery(c))
	require.NotNil(t, c.answer)
	require.Len(t, c.answer.Results, 1)
	art, ok := c.answer.Results[0].(*tele.ArticleResult)
	require.True(t, ok)
	assert.Equal(t, "notes.md", art.Title)

	c.query = &tele.Query{Text: ""}
	require.NoError(t, fx.bot.handleInlineQuery(c))
	assert.Empty(t, c.answer.Results)
}

func TestAdminToggle(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	c := fx.press(t, aliceID, keyAdminOpen)
	assert.Equal(t, textModsOnly, c.lastResponse(t).Text)

	c = fx.press(t, modID, keyAdminUsers, "1")
	assert.NotContains(t, buttons(c.last(t).markup), keyAdminToggle, "only the owner gets toggles")

	c = fx.press(t, modID, keyAdminToggle, idArg(aliceID), "1")
	assert.Equal(t, textNotAllowed, c.lastResponse(t).Text)

	c = fx.press(t, ownerID, keyAdminToggle, idArg(aliceID), "1")
	assert.Contains(t, c.lastResponse(t).Text, "added")
	assert.Contains(t, buttons(c.last(t).markup), keyAdminToggle)
	mod, err := fx.users.IsModerator(ctx, aliceID)
	require.NoError(t, err)
	assert.True(t, mod)

	c = fx.press(t, ownerID, keyAdminToggle, idArg(ownerID), "1")
	assert.Equal(t, textNotAllowed, c.lastResponse(t).Text)
}

func TestAdminStatsAndSettings(t *testing.T) {
	fx := setup(t)
	fx.upload(t, aliceID, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1"})

	c := fx.press(t, modID, keyAdminStats)
	assert.Contains(t, c.lastText(t), "Total items: 1")

	c = fx.press(t, aliceID, keyAdminStats)
	assert.Equal(t, textNotAllowed, c.lastResponse(t).Text)

	c = fx.press(t, modID, keyAdminSettings)
	assert.Contains(t, c.lastText(t), "@vault_store")
	assert.Contains(t, c.lastText(t), "Vault")

	fx.ch.descErr = errors.New("chat not found")
	c = fx.press(t, modID, keyAdminSettings)
	assert.Contains(t, c.lastText(t), "could not be reached")
}

func TestCancel(t *testing.T) {
	fx := setup(t)

	c := newMessage(aliceID, "/cancel")
	require.NoError(t, fx.bot.handleCancel(c))
	assert.Equal(t, textNothingToDo, c.lastText(t))

	fx.press(t, aliceID, keySearchOpen)
	c = newMessage(aliceID, "/cancel")
	require.NoError(t, fx.bot.handleCancel(c))
	assert.Equal(t, textCancelled, c.lastText(t))
	assert.False(t, fx.bot.flows.InProgress(aliceID))
}

func TestUnknownCallbackAlerts(t *testing.T) {
	fx := setup(t)
	c := newCallback(aliceID, "gone")
	require.NoError(t, fx.bot.UnknownCallback()(c))
	assert.True(t, c.lastResponse(t).ShowAlert)
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err   error
		known bool
		want  string
	}{
		{&catalog.MismatchError{Target: catalog.CategoryVideo, Detected: catalog.CategoryImage}, true, "not"},
		{&catalog.InputError{Field: "name", Reason: "empty"}, true, "Invalid name"},
		{fmt.Errorf("wrap: %w", catalog.ErrNotFound), true, "Not found"},
		{catalog.ErrForbidden, true, textNotAllowed},
		{catalog.ErrNotRegistered, true, textRegisterFirst},
		{catalog.ErrUnknownCategory, true, "Unknown category"},
		{catalog.ErrUnsupportedMedia, true, "cannot read"},
		{errors.New("disk full"), false, textGenericFailure},
	}
	for _, tc := range cases {
		msg, known := userMessage(tc.err)
		assert.Equal(t, tc.known, known, tc.err.Error())
		assert.Contains(t, msg, tc.want)
	}
}

func TestAttachmentFromMessage(t *testing.T) {
	a, err := AttachmentFromMessage(photo("p1"))
	require.NoError(t, err)
	assert.Equal(t, catalog.MediaPhoto, a.Kind)
	assert.Equal(t, "sunset", a.Caption)

	a, err = AttachmentFromMessage(&tele.Message{Audio: &tele.Audio{File: tele.File{FileID: "a1"}, Title: "Song", MIME: "audio/mpeg"}})
	require.NoError(t, err)
	assert.Equal(t, "Song", a.FileName)

	a, err = AttachmentFromMessage(&tele.Message{Document: &tele.Document{
		File:      tele.File{FileID: "d1"},
		FileName:  "app.apk",
		Thumbnail: &tele.Photo{File: tele.File{FileID: "t1"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "t1", a.ThumbID)
	assert.Equal(t, catalog.CategoryApp, catalog.Classify(a))

	_, err = AttachmentFromMessage(&tele.Message{Text: "hi"})
	assert.ErrorIs(t, err, catalog.ErrUnsupportedMedia)
	_, err = AttachmentFromMessage(nil)
	assert.ErrorIs(t, err, catalog.ErrUnsupportedMedia)
}
