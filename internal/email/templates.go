// TMC App - Membership Community Platform for The Men's Circle
// Copyright 2026 standardhuman
// SPDX-License-Identifier: MIT
// https://github.com/standardhuman/tmc-app

package email

import (
	"fmt"
	"html"
	"strings"
)

// MagicLinkEmail builds the login email carrying the magic link.
func MagicLinkEmail(name, link string) (subject, body string) {
	subject = "Your login link for The Men's Circle"
	body = fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi %s,</h2>
  <p>Click the button below to log in to The Men's Circle. This link expires in 15 minutes.</p>
  <p style="margin: 24px 0;">
    <a href="%s" style="background: #2d5a3d; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Log In</a>
  </p>
  <p style="color: #666; font-size: 13px;">If the button doesn't work, copy this link into your browser:<br>%s</p>
  <p style="color: #666; font-size: 13px;">If you didn't request this, you can safely ignore this email.</p>
</div>`,
		html.EscapeString(name), link, link)
	return subject, body
}

// ContactEmail builds the notification sent when someone submits the
// public contact form.
func ContactEmail(name, fromEmail, message string) (subject, body string) {
	subject = fmt.Sprintf("New contact form message from %s", name)
	body = fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New contact form submission</h2>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <p><strong>Message:</strong></p>
  <blockquote style="border-left: 3px solid #2d5a3d; margin: 0; padding-left: 16px; color: #333;">%s</blockquote>
  <p style="color: #666; font-size: 13px;">Reply to this email to respond directly.</p>
</div>`,
		html.EscapeString(name), html.EscapeString(fromEmail), html.EscapeString(message))
	return subject, body
}

// FeedbackSubmission is the website feedback survey as it lands in the
// notification email: per-area ratings plus free-form comments.
type FeedbackSubmission struct {
	Name              string
	Overall           string
	Design            string
	DesignComments    string
	Directory         string
	DirectoryComments string
	Intros            string
	Login             string
	LoginComments     string
	MissingFeatures   string
	MissingOther      string
	Bugs              string
	Other             string
}

// FeedbackEmail builds the notification sent when a member submits the
// website feedback survey. Comment sections are omitted when empty.
func FeedbackEmail(f FeedbackSubmission) (subject, body string) {
	subject = fmt.Sprintf("Website Feedback: %s (%s/5)", f.Name, f.Overall)

	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New website feedback</h2>
`)
	fmt.Fprintf(&b, "  <p><strong>From:</strong> %s</p>\n", html.EscapeString(f.Name))
	b.WriteString(`  <h3>Ratings</h3>
  <table style="width: 100%; border-collapse: collapse;">
`)
	feedbackRatingRow(&b, "Overall Experience", f.Overall+"/5")
	feedbackRatingRow(&b, "Design Feel", f.Design)
	feedbackRatingRow(&b, "Directory Usefulness", f.Directory+"/5")
	feedbackRatingRow(&b, "Intro Letters Opinion", f.Intros)
	feedbackRatingRow(&b, "Login Experience", f.Login)
	b.WriteString("  </table>\n")

	feedbackSection(&b, "Design Comments", f.DesignComments)
	feedbackSection(&b, "Directory Comments", f.DirectoryComments)
	feedbackSection(&b, "Login Comments", f.LoginComments)
	feedbackSection(&b, "Missing Features Requested", f.MissingFeatures)
	feedbackSection(&b, "Other Missing Features", f.MissingOther)
	feedbackSection(&b, "Bugs Reported", f.Bugs)
	feedbackSection(&b, "Other Comments", f.Other)

	b.WriteString(`  <p style="color: #666; font-size: 13px;">This feedback was also saved to the Website Feedback tab in the roster sheet.</p>
</div>`)
	return subject, b.String()
}

func feedbackRatingRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `    <tr><td style="padding: 8px; border: 1px solid #ddd;"><strong>%s</strong></td><td style="padding: 8px; border: 1px solid #ddd;">%s</td></tr>
`, label, html.EscapeString(value))
}

func feedbackSection(b *strings.Builder, title, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(b, `  <h3>%s</h3>
  <blockquote style="border-left: 3px solid #2d5a3d; margin: 0; padding-left: 16px; color: #333;">%s</blockquote>
`, title, html.EscapeString(content))
}
