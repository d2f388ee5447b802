package model

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ValidReportStatuses lists every status a moderator may set. Resolved and
// dismissed are meant as terminal states but transitioning out of them is
// allowed.
var ValidReportStatuses = []ReportStatus{
	ReportStatusPending,
	ReportStatusReviewed,
	ReportStatusResolved,
	ReportStatusDismissed,
}

func (s ReportStatus) Valid() bool {
	for _, v := range ValidReportStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationTypeInfo        NotificationType = "info"
	NotificationTypeWarning     NotificationType = "warning"
	NotificationTypeAlert       NotificationType = "alert"
	NotificationTypeMaintenance NotificationType = "maintenance"
)
