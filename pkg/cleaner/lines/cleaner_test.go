package lines

import (
	"os"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil rules use default", func(t *testing.T) {
		c := New(nil)
		if c.rules != Default() {
			t.Error("expected default rule set")
		}
	})

	t.Run("custom rules are used", func(t *testing.T) {
		rs := MustCompile(Rules{Blacklist: []string{"Menú principal"}})
		c := New(rs)
		if c.rules != rs {
			t.Error("expected custom rule set")
		}
	})
}

func TestName(t *testing.T) {
	if got := New(nil).Name(); got != "lines" {
		t.Errorf("expected name 'lines', got %q", got)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only blank lines",
			input: "\n  \n\t\n",
			want:  "",
		},
		{
			name:  "blacklisted whole line is dropped",
			input: "Inicio\nBienvenidos al programa de licenciatura",
			want:  "Bienvenidos al programa de licenciatura",
		},
		{
			name:  "blacklist is case-insensitive",
			input: "inicio\nMAIN MENU\nBienvenidos al programa de licenciatura",
			want:  "Bienvenidos al programa de licenciatura",
		},
		{
			name:  "blacklist entry inside a longer line is kept",
			input: "Inicio de clases el lunes por la mañana",
			want:  "Inicio de clases el lunes por la mañana",
		},
		{
			name:  "css and javascript are dropped",
			input: "body{margin:0}\n$(document).ready(function() {\n});\nEl plan de estudios tiene ocho semestres.",
			want:  "El plan de estudios tiene ocho semestres.",
		},
		{
			name:  "fragments are merged",
			input: "Hola,\nmundo.",
			want:  "Hola, mundo.",
		},
		{
			name:  "merge is a single pass",
			input: "a\nb\nc",
			want:  "a b\nc",
		},
		{
			name:  "capitalized next line is not merged",
			input: "Requisitos de ingreso:\nCertificado de bachillerato",
			want:  "Requisitos de ingreso:\nCertificado de bachillerato",
		},
		{
			name:  "blank runs are removed",
			input: "Primera línea del documento\n\n\n\nSegunda línea del documento",
			want:  "Primera línea del documento\nSegunda línea del documento",
		},
		{
			name:  "block comments are removed across lines",
			input: "Texto antes /* comentario\nmultilínea */ y después del comentario",
			want:  "Texto antes  y después del comentario",
		},
		{
			name:  "entities are unescaped",
			input: "Programación &amp; Algoritmos avanzados",
			want:  "Programación & Algoritmos avanzados",
		},
		{
			name:  "surrounding whitespace is stripped",
			input: "   Horario de atención a alumnos   \r\n",
			want:  "Horario de atención a alumnos",
		},
		{
			name:  "short symbol lines are dropped",
			input: "•\n*\nIntroducción a la programación",
			want:  "Introducción a la programación",
		},
	}

	c := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Clean(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Clean() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClean_Fixture(t *testing.T) {
	raw, err := os.ReadFile("testdata/programa.txt")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	got, err := New(nil).Clean(string(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contains := []string{
		"El programa forma profesionales capaces de diseñar, desarrollar y mantener sistemas de cómputo.",
		"Perfil de egreso: resolver problemas mediante algoritmos eficientes.",
		"Programación & Algoritmos es una materia obligatoria del segundo semestre.",
	}
	for _, s := range contains {
		if !strings.Contains(got, s) {
			t.Errorf("expected output to contain %q\ngot:\n%s", s, got)
		}
	}

	excludes := []string{
		"Skip to content", "Inicio", "body{", "img.emoji", "estilos del carrusel",
		"$(document)", "});", "-->", "Proyecto curricular", "+----", "| |",
		"Hermosillo", "Previous", "•",
	}
	for _, s := range excludes {
		if strings.Contains(got, s) {
			t.Errorf("expected output to exclude %q\ngot:\n%s", s, got)
		}
	}

	// The program title is blacklisted as a whole line.
	if strings.Contains(got, "Licenciatura en Ciencias de la Computación\n") {
		t.Error("expected title line to be dropped")
	}
}

func TestClean_Idempotent(t *testing.T) {
	raw, err := os.ReadFile("testdata/programa.txt")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	c := New(nil)
	tests := []struct {
		name  string
		input string
	}{
		{"fixture output", c.CleanWithStats(string(raw)).Content},
		{"single sentence", "Horario de atención a alumnos"},
		{"upper-case continuation", "Requisitos de ingreso para el semestre.\nLa convocatoria abre en enero."},
		{"long first line", "El programa forma profesionales capaces de diseñar, desarrollar y mantener sistemas.\ny mantenerlos"},
		{"colon inside line", "Perfil de egreso: resolver problemas mediante algoritmos eficientes."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, _ := c.Clean(tt.input)
			if once != tt.input {
				t.Fatalf("first Clean() changed clean input:\n%q\nto\n%q", tt.input, once)
			}
			twice, _ := c.Clean(once)
			if twice != once {
				t.Errorf("second Clean() = %q, want %q", twice, once)
			}
		})
	}
}

func TestCleanWithStats(t *testing.T) {
	input := "Inicio\nbody{x}\n•\n/* nota */\nHola,\nmundo."
	result := New(nil).CleanWithStats(input)

	if result.Content != "Hola, mundo." {
		t.Errorf("Content = %q, want %q", result.Content, "Hola, mundo.")
	}

	s := result.Stats
	if s.InputBytes != len(input) {
		t.Errorf("InputBytes = %d, want %d", s.InputBytes, len(input))
	}
	if s.OutputBytes != len(result.Content) {
		t.Errorf("OutputBytes = %d, want %d", s.OutputBytes, len(result.Content))
	}
	if s.LinesIn != 5 {
		t.Errorf("LinesIn = %d, want 5", s.LinesIn)
	}
	if s.LinesKept != 2 {
		t.Errorf("LinesKept = %d, want 2", s.LinesKept)
	}
	if s.Merges != 1 {
		t.Errorf("Merges = %d, want 1", s.Merges)
	}
	if s.CommentsRemoved != 1 {
		t.Errorf("CommentsRemoved = %d, want 1", s.CommentsRemoved)
	}

	wantDropped := map[Reason]int{
		ReasonBlacklist: 1,
		ReasonCode:      1,
		ReasonShort:     1,
	}
	for reason, want := range wantDropped {
		if got := s.Dropped[reason]; got != want {
			t.Errorf("Dropped[%s] = %d, want %d", reason, got, want)
		}
	}
	if s.TotalDropped() != 3 {
		t.Errorf("TotalDropped() = %d, want 3", s.TotalDropped())
	}
}

func TestClean_CustomRules(t *testing.T) {
	rs := MustCompile(Rules{Blacklist: []string{"Menú principal"}})
	got, err := New(rs).Clean("Menú principal\nInicio\nwidth: 100%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the custom blacklist applies; the surviving lines then merge.
	if got != "Inicio width: 100%" {
		t.Errorf("Clean() = %q, want %q", got, "Inicio width: 100%")
	}
}
