package speech

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// defaultAudioType is assumed when neither content sniffing nor the
// client-declared type identifies the clip.
const defaultAudioType = "audio/wav"

// Audio is a recorded clip ready for transcription.
type Audio struct {
	Data     []byte
	MIMEType string
	Filename string
}

// NewAudio sniffs the clip's media type. The declared type is used when
// sniffing finds no audio or video container.
func NewAudio(data []byte, filename, declared string) Audio {
	t := detectType(data, declared)
	return Audio{
		Data:     data,
		MIMEType: t,
		Filename: orDefault(filename, "audio"+extension(t)),
	}
}

func detectType(data []byte, declared string) string {
	mt := mimetype.Detect(data)
	if isMedia(mt.String()) {
		return baseType(mt.String())
	}
	if isMedia(declared) {
		return baseType(declared)
	}
	return defaultAudioType
}

func isMedia(t string) bool {
	return strings.HasPrefix(t, "audio/") || strings.HasPrefix(t, "video/")
}

func baseType(t string) string {
	t, _, _ = strings.Cut(t, ";")
	return strings.TrimSpace(t)
}

func extension(t string) string {
	if mt := mimetype.Lookup(t); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	return ".wav"
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
