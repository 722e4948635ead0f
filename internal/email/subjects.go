package email

const subjectAssignmentFmt = "New lead assigned: %s"
