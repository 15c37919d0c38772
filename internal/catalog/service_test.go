package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/storage"
	"github.com/m3rciful/vaultbot/internal/storage/storagetest"
)

const (
	ownerID int64 = 1
	modID   int64 = 2
	aliceID int64 = 3
	bobID   int64 = 4
)

type fakePublisher struct {
	mu        sync.Mutex
	next      int
	published []catalog.Attachment
	deleted   []int
	failPub   error
	failDel   error
}

func (p *fakePublisher) Publish(_ context.Context, a catalog.Attachment) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPub != nil {
		return 0, p.failPub
	}
	p.next++
	p.published = append(p.published, a)
	return 100 + p.next, nil
}

func (p *fakePublisher) Delete(_ context.Context, id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.failDel
}

type fixture struct {
	users *catalog.UserService
	items *catalog.ItemService
	pub   *fakePublisher
	store *storage.Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := storage.New(storagetest.Open(t))
	pub := &fakePublisher{}
	users := catalog.NewUserService(st.Users, ownerID, 6)
	items := catalog.NewItemService(st.Items, users, pub, catalog.Limits{NameMax: 10, KeywordMax: 8})

	require.NoError(t, users.SeedOwner(ctx))
	require.NoError(t, users.Register(ctx, modID, "Mod"))
	_, err := users.ToggleModerator(ctx, ownerID, modID)
	require.NoError(t, err)
	require.NoError(t, users.Register(ctx, aliceID, "Alice"))
	require.NoError(t, users.Ensure(ctx, bobID, "Bob"))
	return fixture{users: users, items: items, pub: pub, store: st}
}

func doc(name, mime string) catalog.Attachment {
	return catalog.Attachment{Kind: catalog.MediaDocument, FileID: "f-" + name, FileName: name, MIME: mime}
}

func TestUploadRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.items.Upload(ctx, bobID, nil, doc("a.pdf", "application/pdf"))
	assert.ErrorIs(t, err, catalog.ErrNotRegistered)

	app := catalog.CategoryApp
	it, err := f.items.Upload(ctx, aliceID, &app, doc("notes.txt", "text/plain"))
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryApp, it.Category, "generic files may be filed as apps")
	require.NotNil(t, it.ChannelMsgID)
	assert.Equal(t, int64(101), *it.ChannelMsgID)

	img := catalog.CategoryImage
	_, err = f.items.Upload(ctx, aliceID, &img, doc("song.mp3", "audio/mpeg"))
	var mm *catalog.MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, catalog.CategoryAudio, mm.Detected)
	assert.ErrorIs(t, err, catalog.ErrCategoryMismatch)
	assert.Len(t, f.pub.published, 1, "mismatched upload is not published")

	quick, err := f.items.Upload(ctx, aliceID, nil, catalog.Attachment{Kind: catalog.MediaPhoto, FileID: "p1", Caption: "  "})
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryImage, quick.Category)
	assert.Nil(t, quick.Caption, "blank caption stored as NULL")

	_, err = f.items.Upload(ctx, aliceID, nil, catalog.Attachment{Kind: catalog.MediaDocument})
	assert.ErrorIs(t, err, catalog.ErrUnsupportedMedia)

	f.pub.failPub = errors.New("channel down")
	_, err = f.items.Upload(ctx, aliceID, nil, doc("b.zip", ""))
	assert.Error(t, err)
}

func TestListActivePaging(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for i := 0; i < 7; i++ {
		_, err := f.items.Upload(ctx, aliceID, nil, doc(strings.Repeat("x", i+1), "audio/ogg"))
		require.NoError(t, err)
	}

	p1, err := f.items.ListActive(ctx, catalog.CategoryAudio, 1)
	require.NoError(t, err)
	assert.Len(t, p1.Items, 6)
	assert.True(t, p1.HasNext)
	assert.False(t, p1.HasPrev)

	p2, err := f.items.ListActive(ctx, catalog.CategoryAudio, 2)
	require.NoError(t, err)
	assert.Len(t, p2.Items, 1)
	assert.False(t, p2.HasNext)
	assert.True(t, p2.HasPrev)

	_, err = f.items.ListActive(ctx, catalog.Category("docs"), 1)
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestEditPermissions(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	it, err := f.items.Upload(ctx, aliceID, nil, doc("a.pdf", "application/pdf"))
	require.NoError(t, err)

	_, err = f.items.Rename(ctx, bobID, it.ID, "stolen")
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	renamed, err := f.items.Rename(ctx, aliceID, it.ID, "  Mine  ")
	require.NoError(t, err)
	assert.Equal(t, "Mine", *renamed.Name)

	_, err = f.items.Rename(ctx, aliceID, it.ID, "   ")
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
	_, err = f.items.Rename(ctx, aliceID, it.ID, "much too long name")
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	capt, err := f.items.SetCaption(ctx, modID, it.ID, "by mod")
	require.NoError(t, err)
	assert.Equal(t, "by mod", *capt.Caption)

	_, err = f.items.Rename(ctx, aliceID, 999, "x")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestTrashLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a, err := f.items.Upload(ctx, aliceID, nil, doc("a.pdf", ""))
	require.NoError(t, err)
	b, err := f.items.Upload(ctx, aliceID, nil, doc("b.pdf", ""))
	require.NoError(t, err)

	_, err = f.items.Trash(ctx, bobID, a.ID)
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	trashed, err := f.items.Trash(ctx, aliceID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusTrashed, trashed.Status)
	assert.NotNil(t, trashed.DeletedAt)

	_, err = f.items.Get(ctx, bobID, a.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound, "trashed items are hidden from other users")
	got, err := f.items.Get(ctx, modID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Trashed())
	_, err = f.items.Get(ctx, aliceID, a.ID)
	require.NoError(t, err, "uploader still sees own trashed item")

	page, err := f.items.ListTrash(ctx, modID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	page, err = f.items.ListTrash(ctx, aliceID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	page, err = f.items.ListTrash(ctx, bobID, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	restored, err := f.items.Restore(ctx, aliceID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusActive, restored.Status)
	assert.Nil(t, restored.DeletedAt)

	assert.ErrorIs(t, f.items.Purge(ctx, aliceID, b.ID), catalog.ErrForbidden)
	assert.ErrorIs(t, f.items.Purge(ctx, modID, b.ID), catalog.ErrInvalidInput, "active items cannot be purged")

	_, err = f.items.Trash(ctx, aliceID, b.ID)
	require.NoError(t, err)
	f.pub.failDel = errors.New("message to delete not found")
	require.NoError(t, f.items.Purge(ctx, modID, b.ID), "channel cleanup is best-effort")
	assert.Equal(t, []int{int(*b.ChannelMsgID)}, f.pub.deleted)

	_, err = f.items.Get(ctx, modID, b.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestPurgeTrash(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	for _, n := range []string{"a", "b", "c"} {
		it, err := f.items.Upload(ctx, aliceID, nil, doc(n, ""))
		require.NoError(t, err)
		if n != "c" {
			_, err = f.items.Trash(ctx, aliceID, it.ID)
			require.NoError(t, err)
		}
	}

	_, err := f.items.PurgeTrash(ctx, aliceID)
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	n, err := f.items.PurgeTrash(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.pub.deleted, 2)

	stats, err := f.items.Stats(ctx, modID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Zero(t, stats.Trashed)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	fresh, err := f.items.Upload(ctx, aliceID, nil, doc("Report.pdf", ""))
	require.NoError(t, err)
	_, err = f.items.Upload(ctx, aliceID, nil, doc("song.mp3", "audio/mpeg"))
	require.NoError(t, err)
	oldName := "report-2019.pdf"
	old := &catalog.Item{
		Category:   catalog.CategoryFile,
		FileID:     "f-old",
		Name:       &oldName,
		UploaderID: aliceID,
		Status:     catalog.StatusActive,
		CreatedAt:  fresh.CreatedAt.Add(-24 * time.Hour),
	}
	oldID, err := f.store.Items.Insert(ctx, old)
	require.NoError(t, err)

	got, err := f.items.Search(ctx, "REPORT", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, fresh.ID, got[0].ID, "newest first")
	assert.Equal(t, oldID, got[1].ID)

	audio := catalog.CategoryAudio
	got, err = f.items.Search(ctx, "report", &audio)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.items.Search(ctx, "  ", nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
	_, err = f.items.Search(ctx, "ninechars", nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestSearchNonASCII(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	report, err := f.items.Upload(ctx, aliceID, nil, doc("Отчёт.pdf", ""))
	require.NoError(t, err)
	anger, err := f.items.Upload(ctx, aliceID, nil, doc("Ärger.txt", ""))
	require.NoError(t, err)

	for kw, want := range map[string]int64{"отчёт": report.ID, "ОТЧЁТ": report.ID, "ärger": anger.ID, "ÄRGER": anger.ID} {
		got, err := f.items.Search(ctx, kw, nil)
		require.NoError(t, err)
		require.Len(t, got, 1, kw)
		assert.Equal(t, want, got[0].ID, kw)
	}
}

func TestRolesAndModeratorToggle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	roles := map[int64]catalog.Role{
		ownerID: catalog.RoleOwner,
		modID:   catalog.RoleModerator,
		aliceID: catalog.RoleUser,
		bobID:   catalog.RoleGuest,
		999:     catalog.RoleGuest,
	}
	for id, want := range roles {
		got, err := f.users.Role(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "user %d", id)
	}

	_, err := f.users.ToggleModerator(ctx, modID, aliceID)
	assert.ErrorIs(t, err, catalog.ErrForbidden, "moderators cannot promote")
	_, err = f.users.ToggleModerator(ctx, ownerID, ownerID)
	assert.ErrorIs(t, err, catalog.ErrForbidden, "owner is never demoted")
	_, err = f.users.ToggleModerator(ctx, ownerID, 999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	on, err := f.users.ToggleModerator(ctx, ownerID, aliceID)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := f.users.ToggleModerator(ctx, ownerID, aliceID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = f.users.List(ctx, bobID, 1)
	assert.ErrorIs(t, err, catalog.ErrForbidden)
	page, err := f.users.List(ctx, modID, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
	assert.False(t, page.HasNext)
}
