package domain

// Attachment upload limits
const MaxAttachmentSize = 20 * 1024 // 20 KB

// AttachmentUploadResponse is returned after a successful upload
type AttachmentUploadResponse struct {
	URL            string         `json:"url"`
	AttachmentKind AttachmentKind `json:"attachment_kind"`
	Size           int64          `json:"size"`
}
