package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
)

// PageConfig carries the values shared by every rendered page.
type PageConfig struct {
	SiteName         string
	Username         string
	AssetVersion     string
	CaptchaProvider  string
	CaptchaSiteKey   string
	CaptchaAction    string
	MinMessageLength int
}

type pageData struct {
	PageConfig
	Title   string
	Active  string
	Year    int
	Status  int
	Message string
}

var pageNames = []string{"index", "repos", "contact", "error"}

// Pages renders the HTML pages from a template filesystem.
type Pages struct {
	templates map[string]*template.Template
	cfg       PageConfig
	now       func() time.Time
}

// NewPages parses every page against the shared layout in fsys.
func NewPages(fsys fs.FS, cfg PageConfig) (*Pages, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Pages{templates: templates, cfg: cfg, now: time.Now}, nil
}

// Home handles GET /.
func (p *Pages) Home(c *gin.Context) {
	p.render(c, http.StatusOK, "index", pageData{Title: "Home", Active: "home"})
}

// Repos handles GET /repos.
func (p *Pages) Repos(c *gin.Context) {
	p.render(c, http.StatusOK, "repos", pageData{Title: "Projects", Active: "repos"})
}

// Contact handles GET /contact.
func (p *Pages) Contact(c *gin.Context) {
	p.render(c, http.StatusOK, "contact", pageData{Title: "Contact", Active: "contact"})
}

// Error renders the HTML error page for status.
func (p *Pages) Error(c *gin.Context, status int) {
	message := "Something went wrong on our side. Please try again later."
	if status == http.StatusNotFound {
		message = "The page you were looking for does not exist."
	}
	p.render(c, status, "error", pageData{Title: http.StatusText(status), Status: status, Message: message})
}

func (p *Pages) render(c *gin.Context, status int, name string, data pageData) {
	data.PageConfig = p.cfg
	data.Year = p.now().Year()

	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.WithModule("http").Error("render page", zap.String("page", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
