package slug_test

import (
	"testing"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/slug"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single word", in: "Welcome", want: "welcome"},
		{name: "spaces", in: "About Us", want: "about-us"},
		{name: "umlaut", in: "Über Uns", want: "uber-uns"},
		{name: "ampersand", in: "FAQ & Kontakt", want: "faq-kontakt"},
		{name: "digits", in: "Programm 2024", want: "programm-2024"},
		{name: "trailing punctuation", in: "Willkommen!", want: "willkommen"},
		{name: "uppercase", in: "HELLO WORLD", want: "hello-world"},
		{name: "mixed", in: "Über Uns & Kontakt!", want: "uber-uns-kontakt"},
		{name: "sharp s", in: "Große Straße", want: "grosse-strasse"},
		{name: "accents", in: "Café Crème", want: "cafe-creme"},
		{name: "leading separators", in: "  --Hallo--  ", want: "hallo"},
		{name: "underscore", in: "a_b", want: "a-b"},
		{name: "only punctuation", in: "!?&", want: ""},
		{name: "runs collapse", in: "a  -  b", want: "a-b"},
		{name: "non latin dropped", in: "Mond 月", want: "mond"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Slugify(tt.in))
		})
	}
}
