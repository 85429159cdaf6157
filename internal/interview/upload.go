package interview

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// Document is an uploaded supporting file. It is never validated or analysed.
type Document struct {
	Name       string    `json:"name"`
	Path       string    `json:"path,omitempty"`
	Size       int64     `json:"size"`
	MIMEType   string    `json:"mime_type,omitempty"`
	Data       []byte    `json:"-"`
	Ref        string    `json:"ref,omitempty"`
	SelectedAt time.Time `json:"selected_at"`
}

// DocumentFromFile describes a local file without reading it.
func DocumentFromFile(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", path)
	}

	return Document{
		Name:     info.Name(),
		Path:     path,
		Size:     info.Size(),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}

// UploadSlot holds at most one document.
type UploadSlot struct {
	doc *Document
}

// Select replaces whatever was held before.
func (u *UploadSlot) Select(doc Document) {
	u.doc = &doc
}

func (u *UploadSlot) Current() (Document, bool) {
	if u.doc == nil {
		return Document{}, false
	}
	return *u.doc, true
}
