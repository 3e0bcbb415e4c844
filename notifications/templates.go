package notifications

import (
	"fmt"
	"strings"
)

func sessionScheduledTemplate(tutorName, studentName, subject, date, time string) string {
	return fmt.Sprintf(`
		<h2>🎓 New Tutoring Session Scheduled</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p>You have a new tutoring session scheduled:</p>
		<ul>
			<li><strong>Student:</strong> %s</li>
			<li><strong>Subject:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s</li>
		</ul>
		<p>Please confirm your availability on the platform.</p>
		<br>
		<p>Regards,<br>The TutorConnect Team</p>
	`, tutorName, studentName, subject, date, time)
}

func sessionCompletedTemplate(studentName, tutorName, subject string) string {
	return fmt.Sprintf(`
		<h2>✅ Tutoring Session Completed</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p>Your <strong>%s</strong> session with %s is now complete.</p>
		<p>Would you like to leave a review? Your feedback helps other students.</p>
		<br>
		<p>Regards,<br>The TutorConnect Team</p>
	`, studentName, subject, tutorName)
}

func reviewReceivedTemplate(tutorName string, rating int, comment string) string {
	stars := strings.Repeat("⭐", rating)
	quoted := ""
	if comment != "" {
		quoted = fmt.Sprintf("<p><em>%q</em></p>", comment)
	}
	return fmt.Sprintf(`
		<h2>🌟 New Review Received</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p>You have received a new review:</p>
		<p style="font-size: 24px;">%s (%d/5)</p>
		%s
		<p>Keep up the great work!</p>
		<br>
		<p>Regards,<br>The TutorConnect Team</p>
	`, tutorName, stars, rating, quoted)
}
