package site

import (
	"bytes"
	"fmt"
	html "html/template"
	"strings"
	text "text/template"
	"time"

	"github.com/hostsuite/resellerd/internal/packages"
)

// Renderer produces the starter content seeded into a new namespace.
// Implementations must be pure: deterministic for given inputs, no side
// effects.
type Renderer interface {
	RenderLandingPage(siteName string, features []string) ([]byte, error)
	RenderReadme(siteName string, features []string, transportHost string, transportPort int) ([]byte, error)
}

const landingPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.SiteName}} - Welcome</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            margin: 0;
            padding: 0;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: #333;
            min-height: 100vh;
            display: flex;
            justify-content: center;
            align-items: center;
        }
        .container {
            background: white;
            padding: 40px;
            border-radius: 10px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.3);
            max-width: 600px;
            text-align: center;
        }
        h1 { color: #667eea; margin-bottom: 20px; }
        .features { margin: 30px 0; text-align: left; }
        .feature {
            background: #f7f7f7;
            padding: 10px;
            margin: 10px 0;
            border-radius: 5px;
            border-left: 4px solid #667eea;
        }
        .footer { margin-top: 30px; color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Welcome to {{.SiteName}}!</h1>
        <p>Your site has been successfully provisioned.</p>

        <div class="features">
            <h3>Your Package Includes:</h3>
{{- range .Features}}
            <div class="feature">&#10003; {{display .}}</div>
{{- end}}
        </div>

        <p>You can upload your files via FTP to customize this website.</p>

        <div class="footer">
            <p>Powered by Reseller Hosting</p>
        </div>
    </div>
</body>
</html>
`

const readmeTemplate = `# {{.SiteName}}

Welcome to your reseller hosting site!

## Site Information
- Site Name: {{.SiteName}}
- Package: {{join .Features ", "}}
- Created: {{.CreatedAt}}

## Directory Structure
- ` + "`content/`" + ` - Your website files (HTML, CSS, JS, images)
- ` + "`data/`" + ` - Database and data files
- ` + "`uploads/`" + ` - User uploaded files
- ` + "`logs/`" + ` - System logs

## FTP Access
You can access your files via FTP using your username and password.
- Host: {{.TransportHost}}
- Port: {{.TransportPort}}
- Protocol: FTP

## Getting Started
1. Upload your website files to the ` + "`content`" + ` directory
2. Customize the default index.html file
3. Add your content and media files

For support, please contact your reseller provider.
`

// TemplateRenderer renders the starter content from built-in templates.
type TemplateRenderer struct {
	landing *html.Template
	readme  *text.Template

	// now supplies the README creation timestamp; overridable in tests to
	// keep rendering deterministic.
	now func() time.Time
}

// NewTemplateRenderer parses the built-in templates.
func NewTemplateRenderer() *TemplateRenderer {
	landing := html.Must(html.New("landing").Funcs(html.FuncMap{
		"display": packages.FeatureDisplayName,
	}).Parse(landingPageTemplate))
	readme := text.Must(text.New("readme").Funcs(text.FuncMap{
		"join": strings.Join,
	}).Parse(readmeTemplate))
	return &TemplateRenderer{
		landing: landing,
		readme:  readme,
		now:     time.Now,
	}
}

// RenderLandingPage renders the welcome page listing enabled features by
// their human-readable names.
func (r *TemplateRenderer) RenderLandingPage(siteName string, features []string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		SiteName string
		Features []string
	}{SiteName: siteName, Features: features}
	if errExec := r.landing.Execute(&buf, data); errExec != nil {
		return nil, fmt.Errorf("site: render landing page: %w", errExec)
	}
	return buf.Bytes(), nil
}

// RenderReadme renders the README describing the layout and transfer
// connection parameters.
func (r *TemplateRenderer) RenderReadme(siteName string, features []string, transportHost string, transportPort int) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		SiteName      string
		Features      []string
		CreatedAt     string
		TransportHost string
		TransportPort int
	}{
		SiteName:      siteName,
		Features:      features,
		CreatedAt:     r.now().UTC().Format(time.RFC3339),
		TransportHost: transportHost,
		TransportPort: transportPort,
	}
	if errExec := r.readme.Execute(&buf, data); errExec != nil {
		return nil, fmt.Errorf("site: render readme: %w", errExec)
	}
	return buf.Bytes(), nil
}
