// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package books is a small HTTP service over a Book table. Every route is a
// thin host over one binding: two output collectors and two input lookups.
package books

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"sqlbind/internal/autoresolve"
	"sqlbind/internal/binding"
	"sqlbind/internal/config"
	"sqlbind/internal/dsn"
	"sqlbind/internal/logging"
	"sqlbind/internal/settings"
	"sqlbind/internal/table"
)

// Columns of the Book table, in insert order.
var Columns = []string{"Title", "Author", "Yr", "Genre"}

// Book is one request item. Empty fields are stored as null; an empty title
// gets a generated placeholder.
type Book struct {
	Title  string      `json:"title"`
	Author string      `json:"author"`
	Yr     json.Number `json:"yr,omitempty"`
	Genre  string      `json:"genre"`
}

// Service serves the book routes.
type Service struct {
	bindings *binding.Resolver
	settings settings.Resolver
	cfg      config.Books
	logger   *slog.Logger
}

// New returns a Service. cfg.Table defaults to Book.
func New(bindings *binding.Resolver, resolver settings.Resolver, cfg config.Books, logger *slog.Logger) *Service {
	if cfg.Table == "" {
		cfg.Table = "Book"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{bindings: bindings, settings: resolver, cfg: cfg, logger: logger}
}

// Routes mounts the service under /api.
func (s *Service) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/addbook", s.AddBook)
		r.Post("/addbook", s.AddBook)
		r.Post("/addbooks", s.AddBooks)
		r.Get("/author", s.ByAuthor)
		r.Get("/title", s.ByTitle)
	})
}

func (s *Service) descriptor() binding.Descriptor {
	return binding.Descriptor{Connection: s.cfg.Connection, Table: s.cfg.Table}
}

// AddBook stores one book taken from the query string or a JSON body.
func (s *Service) AddBook(w http.ResponseWriter, r *http.Request) {
	var b Book
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid book: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		q := r.URL.Query()
		b = Book{Title: q.Get("title"), Author: q.Get("author"), Yr: json.Number(q.Get("yr")), Genre: q.Get("genre")}
	}

	t, err := s.bookTable([]Book{b})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := s.bindings.TableCollector(s.descriptor())
	if err != nil {
		s.fail(w, r, "bind book collector", err)
		return
	}
	if err := c.Add(r.Context(), t); err != nil {
		s.fail(w, r, "add book", err)
		return
	}
	if err := c.Flush(r.Context()); err != nil {
		s.fail(w, r, "flush book collector", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// AddBooks stores a JSON array of books in one bulk copy.
func (s *Service) AddBooks(w http.ResponseWriter, r *http.Request) {
	var list []Book
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid book list: "+err.Error(), http.StatusBadRequest)
		return
	}

	t, err := s.bookTable(list)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := s.bindings.Converters().TableToText(t)
	if err != nil {
		s.fail(w, r, "encode books", err)
		return
	}
	c, err := s.bindings.TextCollector(s.descriptor())
	if err != nil {
		s.fail(w, r, "bind books collector", err)
		return
	}
	if err := c.Add(r.Context(), text); err != nil {
		s.fail(w, r, "add books", err)
		return
	}
	if err := c.Flush(r.Context()); err != nil {
		s.fail(w, r, "flush books collector", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ByAuthor looks books up by author through a table input binding.
func (s *Service) ByAuthor(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates()
	if err != nil {
		s.fail(w, r, "choose author query", err)
		return
	}
	query, err := s.expand(tmpl.Author, r, "name")
	if err != nil {
		s.fail(w, r, "expand author query", err)
		return
	}
	d := s.descriptor()
	d.Query = query
	t, err := s.bindings.Table(r.Context(), d)
	if err != nil {
		s.fail(w, r, "query by author", err)
		return
	}
	text, err := s.bindings.Converters().TableToText(t)
	if err != nil {
		s.fail(w, r, "encode author result", err)
		return
	}
	s.writeData(w, r, text)
}

// ByTitle looks books up by title through a text input binding.
func (s *Service) ByTitle(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates()
	if err != nil {
		s.fail(w, r, "choose title query", err)
		return
	}
	query, err := s.expand(tmpl.Title, r, "title")
	if err != nil {
		s.fail(w, r, "expand title query", err)
		return
	}
	d := s.descriptor()
	d.Query = query
	text, err := s.bindings.Text(r.Context(), d)
	if err != nil {
		s.fail(w, r, "query by title", err)
		return
	}
	s.writeData(w, r, text)
}

// templates returns the configured lookups, filling gaps with the defaults
// for the bound database's dialect.
func (s *Service) templates() (Templates, error) {
	tmpl := Templates{Author: s.cfg.AuthorQuery, Title: s.cfg.TitleQuery}
	if tmpl.Author != "" && tmpl.Title != "" {
		return tmpl, nil
	}
	connString, err := s.settings.Resolve(s.descriptor().Locator())
	if err != nil {
		return Templates{}, err
	}
	def := DefaultTemplates(dsn.Detect(connString), s.cfg.Table)
	if tmpl.Author == "" {
		tmpl.Author = def.Author
	}
	if tmpl.Title == "" {
		tmpl.Title = def.Title
	}
	return tmpl, nil
}

// dialect reports the type of the bound database, or unknown when the
// setting does not resolve.
func (s *Service) dialect() dsn.DBType {
	connString, err := s.settings.Resolve(s.descriptor().Locator())
	if err != nil {
		return dsn.DBTypeUnknown
	}
	return dsn.Detect(connString)
}

// literal escapes v as the content of a single-quoted SQL string. MySQL's
// default sql_mode also treats backslash as an escape character.
func literal(v string, t dsn.DBType) string {
	if t == dsn.DBTypeMySQL {
		v = strings.ReplaceAll(v, `\`, `\\`)
	}
	return strings.ReplaceAll(v, "'", "''")
}

// expand resolves a lookup template. Request values are escaped as SQL
// string literal content; required names default to empty.
func (s *Service) expand(template string, r *http.Request, required ...string) (string, error) {
	t := s.dialect()
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = literal(v[0], t)
		}
	}
	for _, name := range required {
		if _, ok := params[name]; !ok {
			params[name] = ""
		}
	}
	return autoresolve.Expand(template, params, func(name string) (string, bool) {
		v, err := s.settings.Resolve(name)
		return v, err == nil
	})
}

func (s *Service) bookTable(list []Book) (*table.Table, error) {
	t, err := table.New(Columns...)
	if err != nil {
		return nil, err
	}
	t.Name = s.cfg.Table
	for i, b := range list {
		title := strings.TrimSpace(b.Title)
		if title == "" {
			title = "Noname-" + uuid.NewString()
		}
		yr := table.Null
		if y := strings.TrimSpace(b.Yr.String()); y != "" {
			if _, err := strconv.Atoi(y); err != nil {
				return nil, fmt.Errorf("book %d: yr %q is not a whole number", i, y)
			}
			yr = table.Text(y)
		}
		if err := t.Append(table.Text(title), optional(b.Author), yr, optional(b.Genre)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func optional(s string) table.Value {
	if s == "" {
		return table.Null
	}
	return table.Text(s)
}

type dataResponse struct {
	Data json.RawMessage `json:"Data"`
}

func (s *Service) writeData(w http.ResponseWriter, r *http.Request, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: json.RawMessage(text)}); err != nil {
		s.logger.Warn("write response", "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, "request_id", middleware.GetReqID(r.Context()), "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
