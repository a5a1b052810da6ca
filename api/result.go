package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
)

// Result is what a handler produces. The concrete kinds are JSON, HTML,
// Empty and Redirect; the endpoint wrapper writes it.
type Result interface {
	StatusCode() int
	Write(w http.ResponseWriter) error
}

type jsonResult struct {
	status int
	body   any
}

// JSON encodes body as the response.
func JSON(status int, body any) Result {
	return jsonResult{status: status, body: body}
}

func (r jsonResult) StatusCode() int { return r.status }

func (r jsonResult) Write(w http.ResponseWriter) error {
	b, err := json.Marshal(r.body)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	_, err = w.Write(b)
	return err
}

// Error is the JSON body {"error": message}.
func Error(status int, message string) Result {
	return JSON(status, map[string]string{"error": message})
}

type htmlResult struct {
	status int
	tmpl   *template.Template
	name   string
	data   any
}

// HTML renders the named template. Rendering happens before the status line
// is written so a template failure can still become a 500.
func HTML(status int, tmpl *template.Template, name string, data any) Result {
	return htmlResult{status: status, tmpl: tmpl, name: name, data: data}
}

func (r htmlResult) StatusCode() int { return r.status }

func (r htmlResult) Write(w http.ResponseWriter) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, r.name, r.data); err != nil {
		return fmt.Errorf("render %s: %w", r.name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(r.status)
	_, err := buf.WriteTo(w)
	return err
}

type emptyResult struct {
	status int
}

// Empty writes only a status line.
func Empty(status int) Result {
	return emptyResult{status: status}
}

func (r emptyResult) StatusCode() int { return r.status }

func (r emptyResult) Write(w http.ResponseWriter) error {
	w.WriteHeader(r.status)
	return nil
}

type redirectResult struct {
	location string
}

// Redirect answers 302 Found to location.
func Redirect(location string) Result {
	return redirectResult{location: location}
}

func (r redirectResult) StatusCode() int { return http.StatusFound }

func (r redirectResult) Write(w http.ResponseWriter) error {
	w.Header().Set("Location", r.location)
	w.WriteHeader(http.StatusFound)
	return nil
}

type cookieResult struct {
	Result
	cookies []*http.Cookie
}

// WithCookies sets cookies before writing res.
func WithCookies(res Result, cookies ...*http.Cookie) Result {
	return cookieResult{Result: res, cookies: cookies}
}

func (r cookieResult) Write(w http.ResponseWriter) error {
	for _, c := range r.cookies {
		http.SetCookie(w, c)
	}
	return r.Result.Write(w)
}
