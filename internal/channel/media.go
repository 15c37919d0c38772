package channel

import (
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// Sendable builds the outgoing payload for a stored file id of the given kind.
func Sendable(kind catalog.MediaKind, fileID, fileName, caption string) tele.Sendable {
	file := tele.File{FileID: fileID}
	switch kind {
	case catalog.MediaPhoto:
		return &tele.Photo{File: file, Caption: caption}
	case catalog.MediaVideo:
		return &tele.Video{File: file, Caption: caption, FileName: fileName}
	case catalog.MediaAudio:
		return &tele.Audio{File: file, Caption: caption, FileName: fileName}
	default:
		return &tele.Document{File: file, Caption: caption, FileName: fileName}
	}
}

// KindFor maps a category to the send method used when an item has no channel copy.
func KindFor(cat catalog.Category) catalog.MediaKind {
	switch cat {
	case catalog.CategoryImage:
		return catalog.MediaPhoto
	case catalog.CategoryVideo:
		return catalog.MediaVideo
	case catalog.CategoryAudio:
		return catalog.MediaAudio
	default:
		return catalog.MediaDocument
	}
}
