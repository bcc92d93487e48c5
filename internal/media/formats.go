package media

import (
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {}, ".avi": {}, ".mkv": {},
	".webm": {}, ".flv": {}, ".wmv": {}, ".mpg": {}, ".mpeg": {},
	".3gp": {}, ".ogv": {}, ".vob": {}, ".mts": {}, ".m2ts": {},
	".ts": {}, ".divx": {}, ".xvid": {}, ".asf": {}, ".rm": {}, ".rmvb": {},
}

var audioExtensions = map[string]struct{}{
	".wav": {}, ".mp3": {}, ".flac": {}, ".ogg": {}, ".m4a": {},
	".aac": {}, ".wma": {}, ".opus": {},
}

// IsVideo reports whether the path has a recognized video container
// extension.
func IsVideo(path string) bool {
	_, ok := videoExtensions[normalizedExt(path)]
	return ok
}

// IsAudio reports whether the path has a recognized audio extension.
func IsAudio(path string) bool {
	_, ok := audioExtensions[normalizedExt(path)]
	return ok
}

// IsSupported reports whether the path is a recognized audio or video
// input.
func IsSupported(path string) bool {
	return IsAudio(path) || IsVideo(path)
}

func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
