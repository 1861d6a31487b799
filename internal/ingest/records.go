package ingest

import (
	"time"

	"blockscan/internal/imagesim"
	"blockscan/internal/owner"
	"blockscan/internal/signature"
)

// Modality names one comparison domain. Records are only ever compared
// within their own modality.
type Modality string

const (
	ModalityProject Modality = "project"
	ModalityImage   Modality = "image"
	ModalityVideo   Modality = "video"
)

// ProjectRecord is one ingested project container. Immutable after ingestion.
type ProjectRecord struct {
	Owner       string
	Path        string
	ContentHash string
	Extraction  signature.Result
}

// ImageRecord is one ingested raster image. Immutable after ingestion.
type ImageRecord struct {
	Owner       string
	Path        string
	ContentHash string
	Fingerprint *imagesim.Fingerprint
}

// VideoRecord is one ingested video file. The content hash may be chunked
// for large files. Immutable after ingestion.
type VideoRecord struct {
	Owner       string
	Path        string
	ContentHash string
	Size        int64
}

// Batch is the completed output of one ingestion run.
type Batch struct {
	ID        string
	CreatedAt time.Time
	Inputs    []string
	Projects  []ProjectRecord
	Images    []ImageRecord
	Videos    []VideoRecord
	Warnings  []owner.Warning
}
