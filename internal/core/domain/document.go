package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentKind string

const (
	KindImage DocumentKind = "image"
	KindPDF   DocumentKind = "pdf"
)

// Document is one uploaded medical report, alive for a single request.
type Document struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Kind        DocumentKind `json:"kind"`
	StoragePath string       `json:"storage_path"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

// KindFromFilename derives the document kind from the file extension.
// Anything that is not a PDF is treated as an image.
func KindFromFilename(filename string) DocumentKind {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return KindPDF
	}
	return KindImage
}

type ImageModality string

const (
	ModalityXRay     ImageModality = "X-ray"
	ModalityCTScan   ImageModality = "CT Scan"
	ModalityMRIScan  ImageModality = "MRI Scan"
	ModalitySkinRash ImageModality = "Skin Rash"
)
