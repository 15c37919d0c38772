package catalog

import (
	"path"
	"strings"
)

// MediaKind is the Telegram message payload an attachment arrived as.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// Attachment is the transport-neutral view of an uploaded message.
type Attachment struct {
	Kind     MediaKind
	FileID   string
	ThumbID  string
	FileName string
	MIME     string
	Caption  string
}

var appExtensions = map[string]struct{}{
	".apk": {}, ".exe": {}, ".msi": {}, ".dmg": {}, ".pkg": {}, ".deb": {}, ".rpm": {},
}

// Classify decides which category an attachment belongs to.
// Photos, videos and audio map directly; documents are judged by MIME type first
// and by file extension second, defaulting to CategoryFile.
func Classify(a Attachment) Category {
	switch a.Kind {
	case MediaPhoto:
		return CategoryImage
	case MediaVideo:
		return CategoryVideo
	case MediaAudio:
		return CategoryAudio
	}
	return classifyDocument(a.MIME, a.FileName)
}

func classifyDocument(mime, name string) Category {
	if mt := strings.ToLower(strings.TrimSpace(mime)); mt != "" {
		switch {
		case strings.Contains(mt, "application/vnd.android.package-archive"),
			strings.HasSuffix(mt, "/x-msdownload"),
			mt == "application/x-dosexec":
			return CategoryApp
		case strings.HasPrefix(mt, "audio/"):
			return CategoryAudio
		case strings.HasPrefix(mt, "video/"):
			return CategoryVideo
		case strings.HasPrefix(mt, "image/"):
			return CategoryImage
		}
	}
	if _, ok := appExtensions[strings.ToLower(path.Ext(name))]; ok {
		return CategoryApp
	}
	return CategoryFile
}
