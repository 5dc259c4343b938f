package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
{{template "body" .}}
<p>Best regards,<br>Job Listing Team</p>
</div>{{end}}`

var (
	welcomeTmpl = mustParse(`{{define "body"}}<h2>Welcome to Job Listing Portal!</h2>
<p>Hi {{.Name}},</p>
<p>Thank you for registering with us. We're excited to have you on board!</p>
<p>Start exploring opportunities or post your jobs today.</p>{{end}}`)

	newApplicationTmpl = mustParse(`{{define "body"}}<h2>New Application</h2>
<p>You have a new application for the position: <strong>{{.JobTitle}}</strong></p>
<p>Applicant: <strong>{{.ApplicantName}}</strong></p>
<p>Log in to your dashboard to review the application.</p>{{end}}`)

	statusUpdateTmpl = mustParse(`{{define "body"}}<h2>Application Status Update</h2>
<p>Your application status has been updated!</p>
<p>Job: <strong>{{.JobTitle}}</strong></p>
<p>New Status: <strong>{{.Status}}</strong></p>
<p>Log in to your dashboard for more details.</p>{{end}}`)

	digestTmpl = mustParse(`{{define "body"}}<h2>New jobs matching your alert</h2>
<p>Hi {{.Name}}, {{len .Jobs}} new job{{if ne (len .Jobs) 1}}s{{end}} matched your {{.Frequency}} alert:</p>
<ul>
{{range .Jobs}}<li><strong>{{.Title}}</strong>{{if .City}} ({{.City}}){{end}}{{if .URL}} <a href="{{.URL}}">view</a>{{end}}</li>
{{end}}</ul>{{end}}`)
)

func mustParse(body string) *template.Template {
	return template.Must(template.Must(template.New("email").Parse(layout)).Parse(body))
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

// Welcome renders the greeting sent when a profile is first created.
func Welcome(name string) (subject, html string, err error) {
	html, err = render(welcomeTmpl, struct{ Name string }{name})
	return "Welcome to Job Listing Portal", html, err
}

// NewApplication renders the employer notice for a fresh application.
func NewApplication(jobTitle, applicantName string) (subject, html string, err error) {
	html, err = render(newApplicationTmpl, struct{ JobTitle, ApplicantName string }{jobTitle, applicantName})
	return "New Application for " + jobTitle, html, err
}

// StatusUpdate renders the applicant notice for a status change.
func StatusUpdate(jobTitle, status string) (subject, html string, err error) {
	html, err = render(statusUpdateTmpl, struct{ JobTitle, Status string }{jobTitle, status})
	return "Application Status: " + status, html, err
}

// DigestJob is one line of an alert digest.
type DigestJob struct {
	Title string
	City  string
	URL   string
}

// AlertDigest renders the periodic summary of jobs matching a saved alert.
func AlertDigest(name, frequency string, jobs []DigestJob) (subject, html string, err error) {
	html, err = render(digestTmpl, struct {
		Name      string
		Frequency string
		Jobs      []DigestJob
	}{name, frequency, jobs})
	return fmt.Sprintf("%d new job matches for your alert", len(jobs)), html, err
}
