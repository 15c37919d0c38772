package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   Attachment
		want Category
	}{
		{"photo", Attachment{Kind: MediaPhoto}, CategoryImage},
		{"video", Attachment{Kind: MediaVideo}, CategoryVideo},
		{"audio", Attachment{Kind: MediaAudio}, CategoryAudio},
		{"apk mime", Attachment{Kind: MediaDocument, MIME: "application/vnd.android.package-archive"}, CategoryApp},
		{"msdownload", Attachment{Kind: MediaDocument, MIME: "application/x-msdownload"}, CategoryApp},
		{"dosexec", Attachment{Kind: MediaDocument, MIME: "application/x-dosexec"}, CategoryApp},
		{"audio doc", Attachment{Kind: MediaDocument, MIME: "audio/flac", FileName: "a.flac"}, CategoryAudio},
		{"video doc", Attachment{Kind: MediaDocument, MIME: "Video/MP4"}, CategoryVideo},
		{"image doc", Attachment{Kind: MediaDocument, MIME: "image/png"}, CategoryImage},
		{"dmg by ext", Attachment{Kind: MediaDocument, MIME: "application/octet-stream", FileName: "Tool.DMG"}, CategoryApp},
		{"deb no mime", Attachment{Kind: MediaDocument, FileName: "pkg_1.0.deb"}, CategoryApp},
		{"pdf", Attachment{Kind: MediaDocument, MIME: "application/pdf", FileName: "doc.pdf"}, CategoryFile},
		{"bare", Attachment{Kind: MediaDocument}, CategoryFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.in))
		})
	}
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(CategoryImage, CategoryImage))
	assert.True(t, Accepts(CategoryApp, CategoryFile))
	assert.True(t, Accepts(CategoryFile, CategoryFile))
	assert.False(t, Accepts(CategoryFile, CategoryApp))
	assert.False(t, Accepts(CategoryApp, CategoryImage))
	assert.False(t, Accepts(CategoryVideo, CategoryFile))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Audio ")
	assert.NoError(t, err)
	assert.Equal(t, CategoryAudio, c)

	_, err = ParseCategory("docs")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDisplayTitle(t *testing.T) {
	name, caption := "Report", "a caption that is definitely longer than twenty runes"
	assert.Equal(t, "Report", Item{Name: &name, Caption: &caption}.DisplayTitle())
	assert.Equal(t, "a caption that is de…", Item{Caption: &caption}.DisplayTitle())

	short := "  hi  "
	assert.Equal(t, "hi…", Item{Caption: &short}.DisplayTitle())
	assert.Equal(t, "video #12", Item{ID: 12, Category: CategoryVideo}.DisplayTitle())
}

func TestPaging(t *testing.T) {
	limit, offset := pageWindow(0, 6)
	assert.Equal(t, 7, limit)
	assert.Equal(t, 0, offset)

	_, offset = pageWindow(3, 6)
	assert.Equal(t, 12, offset)

	p := newPage([]int{1, 2, 3, 4, 5, 6, 7}, 2, 6)
	assert.Len(t, p.Items, 6)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = newPage([]int{1}, -4, 6)
	assert.Equal(t, 1, p.Number)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, LikePattern("50% OFF_now"))
	assert.Equal(t, `%a\\b%`, LikePattern(`a\b`))
}
