package email

const (
	subjectBookingMessageFmt   = "New message about %s: %s"
	subjectBookingStatusFmt    = "Your booking for %s is now %s"
	subjectInvoiceDraftFmt     = "Invoice draft ready for %s"
	subjectMilestoneOverdueFmt = "Milestone overdue: %s"
)
