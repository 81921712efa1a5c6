// Package menu holds the static catalog of social network links and
// reading-material promotions and the reply keyboards built from it.
package menu

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/sanitize"
)

// Kind tags a catalog entry.
type Kind string

const (
	KindSocial Kind = "social"
	KindPromo  Kind = "promo"
)

// Entry is one catalog item. Author, Description and Pages are only set
// for promo entries.
type Entry struct {
	Kind        Kind
	Name        string
	URL         string
	Author      string
	Description string
	Pages       string

	rendered string
}

// Render returns the entry formatted as Telegram HTML.
func (e Entry) Render() string {
	return e.rendered
}

// render formats the entry. Author and Description may be written in
// markdown and are flattened by p. Name doubles as the button text and is
// shown literally, like Pages and the URL.
func render(p *sanitize.Policy, e Entry) string {
	name := html.EscapeString(e.Name)
	link := html.EscapeString(e.URL)
	if e.Kind == KindSocial {
		return fmt.Sprintf("<b><i>Вот ссылка на %s:</i></b> %s", name, link)
	}

	fields := []struct{ label, value string }{
		{"Название", name},
		{"Автор", p.HTML(e.Author)},
		{"Описание", p.HTML(e.Description)},
		{"Страниц", html.EscapeString(e.Pages)},
		{"Ссылка", link},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("<b><i>%s:</i></b> %s", f.label, f.value))
	}
	return strings.Join(parts, "\n\n")
}

// Catalog is the immutable set of entries, keyed by button text.
type Catalog struct {
	social []Entry
	promo  []Entry
	byName map[string]Entry
	kw     config.KeywordsConfig
}

// NewCatalog builds the catalog from configuration. Names are assumed
// unique; config.Validate enforces it.
func NewCatalog(cfg *config.Config) *Catalog {
	c := &Catalog{
		byName: make(map[string]Entry),
		kw:     cfg.Keywords,
	}
	policy := sanitize.NewTelegramPolicy()

	for _, e := range cfg.Catalog.Social {
		entry := Entry{Kind: KindSocial, Name: e.Name, URL: e.URL}
		entry.rendered = render(policy, entry)
		c.social = append(c.social, entry)
		c.byName[entry.Name] = entry
	}
	for _, e := range cfg.Catalog.Promo {
		entry := Entry{
			Kind:        KindPromo,
			Name:        e.Name,
			URL:         e.URL,
			Author:      e.Author,
			Description: e.Description,
			Pages:       e.Pages,
		}
		entry.rendered = render(policy, entry)
		c.promo = append(c.promo, entry)
		c.byName[entry.Name] = entry
	}
	return c
}

// Lookup returns the entry whose button text is name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Entries returns all entries of a kind in configuration order.
func (c *Catalog) Entries(kind Kind) []Entry {
	src := c.social
	if kind == KindPromo {
		src = c.promo
	}
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Names returns the entry names of a kind in configuration order.
func (c *Catalog) Names(kind Kind) []string {
	entries := c.Entries(kind)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// MainKeyboard is the top-level menu.
func (c *Catalog) MainKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard([]string{c.kw.Suggestion}, []string{c.kw.Social}, []string{c.kw.Promo})
}

// AdminKeyboard replaces the suggestion flow for the admin.
func (c *Catalog) AdminKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard([]string{c.kw.AllMessages}, []string{c.kw.Unanswered}, []string{c.kw.Back})
}

// KindKeyboard lists the entries of a kind, one per row, then Back.
func (c *Catalog) KindKeyboard(kind Kind) *models.ReplyKeyboardMarkup {
	names := c.Names(kind)
	rows := make([][]string, 0, len(names)+1)
	for _, n := range names {
		rows = append(rows, []string{n})
	}
	rows = append(rows, []string{c.kw.Back})
	return keyboard(rows...)
}

func keyboard(rows ...[]string) *models.ReplyKeyboardMarkup {
	kb := &models.ReplyKeyboardMarkup{
		Keyboard:       make([][]models.KeyboardButton, 0, len(rows)),
		ResizeKeyboard: true,
	}
	for _, row := range rows {
		buttons := make([]models.KeyboardButton, len(row))
		for i, text := range row {
			buttons[i] = models.KeyboardButton{Text: text}
		}
		kb.Keyboard = append(kb.Keyboard, buttons)
	}
	return kb
}
