package domain

// LogStatus is the approval state of a time-log entry. The reconciler only
// ever writes Pending; Approved/Rejected transitions belong to the manager
// approval workflow on the backend.
type LogStatus string

const (
	StatusPending    LogStatus = "pending"
	StatusApproved   LogStatus = "approved"
	StatusRejected   LogStatus = "rejected"
	StatusInProgress LogStatus = "in_progress"
)

// SyncState tracks whether a locally cached entry has been accepted by the
// remote log store.
type SyncState string

const (
	SyncSynced  SyncState = "synced"
	SyncPending SyncState = "sync_pending"
)
