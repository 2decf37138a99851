package quota

// Reason distinguishes why a prospective write was denied.
type Reason string

const (
	ReasonFileTooLarge   Reason = "file_too_large"
	ReasonMimeNotAllowed Reason = "mime_type_not_allowed"
	ReasonQuotaExceeded  Reason = "total_quota_exceeded"
)

// DenialError carries the denial reason plus a human-readable message safe to
// surface to the client.
type DenialError struct {
	Reason  Reason
	Message string
}

func (e *DenialError) Error() string { return e.Message }
