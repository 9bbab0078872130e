package email

const (
	subjectHandoffAlertFmt      = "Handoff requested: %s"
	subjectLeadQualifiedFmt     = "Lead qualified: %s"
	subjectAppointmentNoticeFmt = "Showing proposed for %s"
	subjectFollowUpDueFmt       = "Follow-up due: %s"
)
