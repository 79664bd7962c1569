package domain

// TransferStatus describes the phase of a transfer as reported on the
// progress stream
type TransferStatus string

const (
	TransferChecksumming TransferStatus = "calculating checksums"
	TransferArchiving    TransferStatus = "creating archive"
	TransferCopying      TransferStatus = "transferring"
	TransferExtracting   TransferStatus = "extracting archive"
	TransferComplete     TransferStatus = "complete"
	TransferFailed       TransferStatus = "failed"
)

// TransferOptions describes a single cross-store transfer request
// Archiving and verification are mandatory policies of every transfer
// issued through the orchestrator; the fields exist so the engine can
// also serve direct-copy callers
type TransferOptions struct {
	SourcePath     string
	TargetPath     string
	CreateArchive  bool
	VerifyTransfer bool
}

// TransferJob is the progress record of the single active transfer
// Every progress event fully replaces the previous record
type TransferJob struct {
	Status         TransferStatus
	CurrentFile    string
	ProcessedFiles int
	TotalFiles     int
	ProcessedBytes int64
	TotalBytes     int64
}

// IsTransferring reports whether the job is still in flight
func (j TransferJob) IsTransferring() bool {
	return j.ProcessedFiles < j.TotalFiles
}

// TransferResult summarizes a finished transfer
type TransferResult struct {
	Success          bool
	Message          string
	TransferredFiles int
	TotalBytes       int64
}
