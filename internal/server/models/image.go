package models

// UploadedImage is an image received from a client, fully read into memory.
type UploadedImage struct {
	Bytes       []byte
	ContentType string
	Size        int64
}

// Empty reports whether the upload carries no data.
func (i *UploadedImage) Empty() bool {
	return i == nil || len(i.Bytes) == 0
}
