package constants

// PageStatus is the lifecycle state of a single page in the extraction pipeline.
type PageStatus string

// Pending -> Conditioning -> Recognizing -> Extracting -> Completed | Failed.
const (
	PageStatusPending      PageStatus = "PENDING"
	PageStatusConditioning PageStatus = "CONDITIONING"
	PageStatusRecognizing  PageStatus = "RECOGNIZING"
	PageStatusExtracting   PageStatus = "EXTRACTING"
	PageStatusCompleted    PageStatus = "COMPLETED" // terminal
	PageStatusFailed       PageStatus = "FAILED"    // terminal
)

// Terminal reports whether no further transitions are possible.
func (s PageStatus) Terminal() bool {
	return s == PageStatusCompleted || s == PageStatusFailed
}

// ImageConfidenceThreshold flags pages whose blended OCR confidence is too low to trust.
const ImageConfidenceThreshold = 0.6
