// Package lines implements a line-classification text cleaner. Raw text
// extracted from web pages and PDFs is split into lines; each line is run
// through an ordered list of drop rules, short fragments are re-joined,
// and blank-line runs are collapsed.
package lines

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Rules holds the string tables the cleaner matches against. Build a
// RuleSet from it with Compile; the RuleSet is what the cleaner uses.
type Rules struct {
	// Blacklist lines are dropped on whole-line, case-insensitive equality.
	Blacklist []string `yaml:"blacklist" validate:"dive,required"`

	// CodeIndicators mark a line as code when contained anywhere in it
	// (case-sensitive).
	CodeIndicators []string `yaml:"code_indicators" validate:"dive,required"`

	// CodeLines mark a line as code on exact equality.
	CodeLines []string `yaml:"code_lines" validate:"dive,required"`

	// NoiseMarkers mark OCR/table/export artifacts. A line containing a
	// marker (case-insensitive) is dropped only when it is less than 30
	// characters longer than the marker.
	NoiseMarkers []string `yaml:"noise_markers" validate:"dive,required"`

	// FooterPhrase drops footer lines that contain it together with "|".
	FooterPhrase string `yaml:"footer_phrase"`

	// PageHeaderPattern matches page-number-plus-header lines.
	PageHeaderPattern string `yaml:"page_header_pattern"`
}

// DefaultRules returns the tables tuned for the cc.unison.mx corpus.
func DefaultRules() Rules {
	return Rules{
		Blacklist: []string{
			"Skip to content", "Top Menu", "Top Menú", "Main Menu", "MENÚ",
			"Inicio", "UNISON", "DEPARTAMENTO", "FACULTAD",
			"ACERCA DEL PROGRAMA", "INFORMACIÓN PARA ALUMNOS", "ADMISIÓN",
			"DOCENTES", "EDITORIAL", "NOTICIAS Y AVISOS",
			"NOTICIAS Y AVISOS ANTERIORES", "Previous", "Next",
			"Conócenos", "Misión y Visión", "Plan de Estudios", "Requisitos",
			"Egreso", "Titulación", "Idioma", "Servicio Social", "CENEVAL",
			"Culturest", "Prácticas Profesionales", "Programa", "Alumnos",
			"Ingreso", "Plan de Estudios 2025-2", "Plan de Estudios 2005-2",
			"Tesis", "LCC-HUB", "Reestructuración LCC", "Licenciatura en Ciencias de la Computación",
			"AI-Linkup", "Banner Reestructuración LCC", "25 Aniversario LCC",
			"Departamento de Matemáticas", "Universidad de Sonora",
			"Presentación", "Directorio", "Trayectorias Escolares", "Tutorías",
			"-->",
		},
		CodeIndicators: []string{
			"body{", "img.emoji", "img.wp-smiley", ".recentcomments",
			"!function", "window._wpemoji", "var ", "$(document)", `$("#`,
			"owlCarousel", "function() {", "});",
			"!important", "box-shadow:", "height:", "width:", "margin:",
			"vertical-align:", "padding:", "display:", "border:", "background:",
			".wp-block-", ".has-", "autoPlay:", "items :", "itemsDesktop",
			"itemsDesktopSmall", "//Set AutoPlay", "{",
		},
		CodeLines: []string{"});", "}", "-->"},
		NoiseMarkers: []string{
			"==> picture", "----- Start of picture text", "----- End of picture text",
			"> [[|]]", "+-", "| Proyecto curricular", "| Elaboró:",
			"| Bibliografía",
		},
		FooterPhrase:      "Universidad de Sonora",
		PageHeaderPattern: `^\d+\s*\|\s*Proyecto curricular`,
	}
}

// LoadRules reads a YAML rule file. Keys absent from the file keep their
// DefaultRules value; keys present replace the default table outright.
func LoadRules(r io.Reader) (Rules, error) {
	rules := DefaultRules()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && err != io.EOF {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// LoadRulesFile reads a YAML rule file from path.
func LoadRulesFile(path string) (Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return Rules{}, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return LoadRules(f)
}

var validate = validator.New()

// Validate checks the tables. Empty entries are rejected because an empty
// substring matches every line.
func (r Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	if r.PageHeaderPattern != "" {
		if _, err := regexp.Compile(r.PageHeaderPattern); err != nil {
			return fmt.Errorf("invalid rules: page_header_pattern: %w", err)
		}
	}
	return nil
}

// marker is a noise marker pre-folded for matching.
type marker struct {
	lower  string
	length int
}

// RuleSet is the compiled, immutable form of Rules. It is safe for
// concurrent use.
type RuleSet struct {
	blacklist      map[string]struct{}
	codeIndicators []string
	codeLines      map[string]struct{}
	markers        []marker
	footer         string
	pageHeader     *regexp.Regexp
	order          []rule
}

// Compile validates r and builds a RuleSet.
func Compile(r Rules) (*RuleSet, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rs := &RuleSet{
		blacklist:      make(map[string]struct{}, len(r.Blacklist)),
		codeIndicators: append([]string(nil), r.CodeIndicators...),
		codeLines:      make(map[string]struct{}, len(r.CodeLines)),
		footer:         strings.ToLower(r.FooterPhrase),
	}
	for _, b := range r.Blacklist {
		rs.blacklist[strings.ToLower(b)] = struct{}{}
	}
	for _, c := range r.CodeLines {
		rs.codeLines[c] = struct{}{}
	}
	for _, m := range r.NoiseMarkers {
		rs.markers = append(rs.markers, marker{
			lower:  strings.ToLower(m),
			length: utf8.RuneCountInString(m),
		})
	}
	if r.PageHeaderPattern != "" {
		rs.pageHeader = regexp.MustCompile(r.PageHeaderPattern)
	}
	rs.order = []rule{
		{ReasonCode, rs.isCode},
		{ReasonBlacklist, rs.isBlacklisted},
		{ReasonStructural, rs.isStructural},
		{ReasonShort, isShortSymbol},
	}
	return rs, nil
}

// MustCompile is like Compile but panics on invalid rules.
func MustCompile(r Rules) *RuleSet {
	rs, err := Compile(r)
	if err != nil {
		panic(err)
	}
	return rs
}

var defaultRuleSet = MustCompile(DefaultRules())

// Default returns the compiled DefaultRules.
func Default() *RuleSet {
	return defaultRuleSet
}
