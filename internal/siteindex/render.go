package siteindex

import (
	"fmt"
	"html/template"
	"io"
)

const dateLayout = "January 02, 2006"

type pageData struct {
	Opts    Options
	Count   int
	Entries []cardData
}

type cardData struct {
	Name  string
	Title template.HTML
	Date  string
}

// Render writes the listing page for entries in the given order.
func Render(w io.Writer, entries []Entry, opts Options) error {
	data := pageData{Opts: opts, Count: len(entries)}
	for _, e := range entries {
		data.Entries = append(data.Entries, cardData{
			Name: e.Name,
			// Titles are escaped when they are derived.
			Title: template.HTML(e.Title),
			Date:  e.ModTime.Format(dateLayout),
		})
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("index").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Opts.SiteTitle}}</title>
    <style>
        body {
            font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            line-height: 1.6;
            max-width: 900px;
            margin: 0 auto;
            padding: 2rem 1rem;
            background: #f5f5f5;
        }
        h1 {
            color: #333;
            border-bottom: 3px solid #0066cc;
            padding-bottom: 0.5rem;
            margin-bottom: 2rem;
        }
        .subtitle {
            color: #666;
            font-size: 1.1rem;
            margin-top: -1.5rem;
            margin-bottom: 2rem;
        }
        .experiments-grid {
            display: grid;
            gap: 1.5rem;
            grid-template-columns: repeat(auto-fill, minmax(300px, 1fr));
        }
        .experiment-card {
            background: white;
            border-radius: 8px;
            padding: 1.5rem;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            transition: transform 0.2s, box-shadow 0.2s;
        }
        .experiment-card:hover {
            transform: translateY(-2px);
            box-shadow: 0 4px 8px rgba(0,0,0,0.15);
        }
        .experiment-title {
            margin: 0 0 0.5rem 0;
            font-size: 1.2rem;
        }
        .experiment-title a {
            color: #0066cc;
            text-decoration: none;
        }
        .experiment-title a:hover {
            text-decoration: underline;
        }
        .experiment-date {
            color: #999;
            font-size: 0.9rem;
        }
        .experiment-filename {
            color: #666;
            font-family: monospace;
            font-size: 0.85rem;
            margin-top: 0.5rem;
        }
        .nav-links {
            margin-bottom: 2rem;
            padding: 1rem;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .nav-links a {
            color: #0066cc;
            text-decoration: none;
            margin-right: 1.5rem;
        }
        .nav-links a:hover {
            text-decoration: underline;
        }
        .stats {
            margin: 2rem 0;
            padding: 1rem;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            text-align: center;
            color: #666;
        }
        @media (max-width: 600px) {
            body {
                padding: 1rem 0.5rem;
            }
            .experiments-grid {
                grid-template-columns: 1fr;
            }
        }
    </style>
</head>
<body>
    <h1>{{.Opts.SiteTitle}}</h1>
    {{- if .Opts.Subtitle}}
    <p class="subtitle">{{.Opts.Subtitle}}</p>
    {{- end}}
    {{if .Opts.Links}}
    <div class="nav-links">
        {{- range .Opts.Links}}
        <a href="{{.Href}}">{{.Label}}</a>
        {{- end}}
    </div>
    {{end}}
    <div class="stats">
        <strong>{{.Count}}</strong> experiments and counting...
    </div>

    <div class="experiments-grid">
{{range .Entries}}
        <div class="experiment-card">
            <h2 class="experiment-title">
                <a href="{{.Name}}">{{.Title}}</a>
            </h2>
            <div class="experiment-date">Last modified: {{.Date}}</div>
            <div class="experiment-filename">{{.Name}}</div>
        </div>
{{end}}
    </div>
    {{if .Opts.Footer}}
    <div style="margin-top: 3rem; text-align: center; color: #999; font-size: 0.9rem;">
        <p>{{.Opts.Footer}}</p>
    </div>
    {{end}}
</body>
</html>
`
