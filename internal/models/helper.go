package models

// AllModels returns every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&BankDetails{},
		&Course{},
		&CourseStudent{},
		&Enrollment{},
		&Lesson{},
		&Assignment{},
		&Submission{},
		&Grade{},
		&Message{},
		&Attendance{},
		&Transaction{},
		&Contact{},
		&Resource{},
		&Multimedia{},
		&Notification{},
	}
}
