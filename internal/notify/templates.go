package notify

import (
	"fmt"
	"net/mail"
	"strings"
)

// ContactMessage builds the notification sent to the school inbox for a contact form entry.
func ContactMessage(destination, name, email string, phone, subject *string, body string) Message {
	title := "Nuevo mensaje de contacto"
	if subject != nil && strings.TrimSpace(*subject) != "" {
		title = fmt.Sprintf("%s: %s", title, strings.TrimSpace(*subject))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", email)
	if phone != nil && *phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", *phone)
	}
	fmt.Fprintf(&b, "\n%s\n", body)

	return Message{
		To:       mail.Address{Address: destination},
		ReplyTo:  &mail.Address{Name: name, Address: email},
		Subject:  title,
		Text:     b.String(),
		Category: "contacto",
	}
}

// InvitationMessage invites a student to a course.
func InvitationMessage(studentName, studentEmail, courseTitle, instructorName string) Message {
	return Message{
		To:      mail.Address{Name: studentName, Address: studentEmail},
		Subject: fmt.Sprintf("Invitación al curso %s", courseTitle),
		Text: fmt.Sprintf(
			"Hola %s,\n\n%s te ha dado acceso al curso \"%s\". Ya puedes verlo en tu panel de estudiante.\n",
			studentName, instructorName, courseTitle,
		),
		Category: "invitacion",
	}
}
