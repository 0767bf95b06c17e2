package mailer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

const (
	TemplatePasswordReset   = "password_reset"
	TemplatePasswordChanged = "password_changed"
)

var subjects = map[string]string{
	TemplatePasswordReset:   `{{ .SiteName }}: reset your password`,
	TemplatePasswordChanged: `{{ .SiteName }}: your password was changed`,
}

var bodies = map[string]string{
	TemplatePasswordReset: `Hi {{ .Name | default "there" | title }},

Someone asked to reset the password for your {{ .SiteName }} account.
Open the link below to choose a new password:

{{ .Link }}

The link expires at {{ date "Jan 2, 2006 15:04 MST" .ExpiresAt }}.
If you did not ask for this, you can ignore this email.
`,
	TemplatePasswordChanged: `Hi {{ .Name | default "there" | title }},

The password for your {{ .SiteName }} account was changed on {{ date "Jan 2, 2006 15:04 MST" .ChangedAt }}.
If this was not you, reset your password right away and contact us.
`,
}

// TemplateData is the input for every email template.
type TemplateData struct {
	SiteName  string
	Name      string
	Link      string
	ExpiresAt time.Time
	ChangedAt time.Time
}

// Renderer turns template names into subject and body text.
type Renderer struct {
	subjects map[string]*template.Template
	bodies   map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		subjects: make(map[string]*template.Template, len(subjects)),
		bodies:   make(map[string]*template.Template, len(bodies)),
	}
	for name, text := range subjects {
		t, err := template.New(name + "_subject").Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", name, err)
		}
		r.subjects[name] = t
	}
	for name, text := range bodies {
		t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse body %s: %w", name, err)
		}
		r.bodies[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(name string, data TemplateData) (subject, body string, err error) {
	st, ok := r.subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := st.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render subject %s: %w", name, err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.bodies[name].Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render body %s: %w", name, err)
	}
	return subject, buf.String(), nil
}

// ResetLink fills the token into the configured reset URL. The URL carries
// one %s placeholder; without one the token is appended as a path segment.
func ResetLink(resetURL, token string) string {
	if strings.Contains(resetURL, "%s") {
		return strings.Replace(resetURL, "%s", token, 1)
	}
	return strings.TrimRight(resetURL, "/") + "/" + token
}
