package main

import (
	"fmt"
	"io"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/dom/tour-of-heroes/internal/views"
)

func printHeroes(w io.Writer, title string, heroes []domain.Hero) {
	fmt.Fprintf(w, "%s\n", title)
	if len(heroes) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, h := range heroes {
		fmt.Fprintf(w, "  %3d  %s\n", h.ID, h.Name)
	}
}

func printHero(w io.Writer, hero *domain.Hero) {
	if hero == nil {
		fmt.Fprintln(w, "no such hero")
		return
	}
	fmt.Fprintf(w, "%s Details\n  id: %d\n  name: %s\n", hero.Name, hero.ID, hero.Name)
}

func printMessages(w io.Writer, v *views.MessagesView) {
	msgs := v.Messages()
	fmt.Fprintln(w, "Messages")
	if len(msgs) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "  %s\n", m)
	}
}
