package types

import "io"

type Attachment struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// Upload is a file about to be sent along a message.
type Upload struct {
	reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

func (u *Upload) SetReader(reader io.Reader) {
	u.reader = reader
}

func (u *Upload) Reader() io.Reader {
	return u.reader
}
